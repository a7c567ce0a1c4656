package middleware

import (
	"strings"

	"github.com/edmorua/admin-user-back/internal/dto"
	"github.com/edmorua/admin-user-back/internal/token"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	bearerPrefix = "Bearer "
	tokenKey     = "token"
	identityKey  = "identity"
)

// Authenticate guards a route with a bearer token issued by tokens. The
// "Bearer " prefix is optional; a bare token in the header is accepted too.
func Authenticate(tokens *token.Service) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		KeyFunc:    tokens.Keyfunc,
		Claims:     &token.Claims{},
		ContextKey: tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			tok, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return invalidToken(c)
			}
			claims, ok := tok.Claims.(*token.Claims)
			if !ok || claims.ExpiresAt == nil {
				return invalidToken(c)
			}
			c.Locals(identityKey, claims)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return invalidToken(c)
		},
	})

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "No authorization header found",
			})
		}

		raw := bearerToken(header)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": "No token, authorization denied",
				"token":   nil,
			})
		}

		c.Request().Header.Set(fiber.HeaderAuthorization, bearerPrefix+raw)
		return verify(c)
	}
}

// Identity returns the claims of the authenticated caller.
func Identity(c *fiber.Ctx) (*token.Claims, bool) {
	claims, ok := c.Locals(identityKey).(*token.Claims)
	return claims, ok && claims != nil
}

// bearerToken strips an optional scheme. Header values reach us trimmed, so
// "Bearer " with nothing after it arrives as "Bearer".
func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if raw == strings.TrimSpace(bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
}

func invalidToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: token.ErrInvalidToken.Error(),
	})
}
