package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edmorua/admin-user-back/internal/token"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateApp(tokens *token.Service) *fiber.App {
	app := fiber.New()
	app.Get("/protected", Authenticate(tokens), func(c *fiber.Ctx) error {
		claims, ok := Identity(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"id": claims.UserID, "email": claims.Email})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, authorization string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestAuthenticate_ValidBearerToken(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGateApp(tokens)

	tok, err := tokens.Issue(token.Identity{UserID: "u-1", Email: "a@x.com"})
	require.NoError(t, err)

	status, body := doGet(t, app, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-1", body["id"])
	assert.Equal(t, "a@x.com", body["email"])
}

func TestAuthenticate_BareToken(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGateApp(tokens)

	tok, err := tokens.Issue(token.Identity{UserID: "u-2", Email: "b@x.com"})
	require.NoError(t, err)

	status, body := doGet(t, app, tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-2", body["id"])
}

func TestAuthenticate_Rejections(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	app := newGateApp(tokens)

	expired, err := token.NewService("secret", -time.Minute).Issue(token.Identity{UserID: "u-1"})
	require.NoError(t, err)
	foreign, err := token.NewService("other-secret", time.Hour).Issue(token.Identity{UserID: "u-1"})
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, token.Claims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(hs512)
	require.ErrorIs(t, err, token.ErrInvalidToken)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "No authorization header found"},
		{"empty bearer", "Bearer ", "No token, authorization denied"},
		{"garbage", "Bearer not-a-jwt", "token is not valid"},
		{"expired", "Bearer " + expired, "token is not valid"},
		{"wrong secret", "Bearer " + foreign, "token is not valid"},
		{"alg none", "Bearer " + unsigned, "token is not valid"},
		{"hs512 with the right secret", "Bearer " + hs512, "token is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doGet(t, app, tt.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, true, body["error"])
		})
	}
}

func TestAuthenticate_EmptyTokenReportsNullToken(t *testing.T) {
	app := newGateApp(token.NewService("secret", time.Hour))

	_, body := doGet(t, app, "Bearer ")
	v, present := body["token"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
