package token

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by access tokens issued at login.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// Manager handles JWT creation and verification.
type Manager struct {
	secretKey string
	expiry    time.Duration
}

// NewManager creates a new JWT manager instance.
func NewManager(secretKey string, expiry time.Duration) *Manager {
	if expiry == 0 {
		expiry = 24 * time.Hour
	}
	return &Manager{secretKey: secretKey, expiry: expiry}
}

// NewManagerFromEnv builds a Manager from JWT_SECRET and JWT_EXPIRY.
// A missing secret is a configuration error: the API cannot issue or verify
// tokens without one.
func NewManagerFromEnv() (*Manager, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	expiry := 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
		}
		expiry = d
	}
	return NewManager(secret, expiry), nil
}

// Generate creates a signed JWT access token for the given account.
func (m *Manager) Generate(accountID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "blogram-api",
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns the account ID it carries.
func (m *Manager) Verify(tokenString string) (uuid.UUID, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return uuid.Nil, errors.New("invalid token claims")
	}
	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return uuid.Nil, errors.New("invalid account id in token")
	}
	return id, nil
}

type contextKey struct{}

// ContextWithAccountID stores the authenticated account ID on a context.
// The auth middleware is the only writer; handlers read it back with
// AccountIDFromContext.
func ContextWithAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// AccountIDFromContext returns the authenticated account ID, if any.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return id, ok
}
