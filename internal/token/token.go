// Package token issues and verifies the signed, time-limited bearer tokens
// handed out at registration and sign-in.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("token is not valid")
	ErrSigning      = errors.New("failed to sign token")
)

// Identity is the account a token is issued for.
type Identity struct {
	UserID string
	Email  string
	Admin  bool
}

// Claims is the payload carried by every token. Admin is always false at
// issuance; nothing in the service promotes an account.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Service signs tokens with a shared HMAC secret loaded once at startup.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed HS256 token for id. Each call yields a distinct
// token because of the random jti.
func (s *Service) Issue(id Identity) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Admin:  id.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the claims encoded at
// issuance. Every failure wraps ErrInvalidToken; callers are not told
// whether the token was expired or malformed.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, s.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Keyfunc resolves the verification key. Only HS256 is accepted, so callers
// parsing with Keyfunc accept exactly the tokens Verify accepts.
func (s *Service) Keyfunc(t *jwt.Token) (interface{}, error) {
	if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return s.secret, nil
}
