package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkurosawa/todoapp-backend/internal/domain"
)

// SessionClaims is the payload of the signed session cookie. The token
// is self-contained: the auth gate can map it to a user without a
// store round-trip, while the embedded session ID keeps the stateful
// revocation path available.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
}

// TokenCodec signs and parses session tokens with HMAC-SHA256.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret}
}

// Sign produces a signed session token for the given session.
func (c *TokenCodec) Sign(userID, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:    userID.String(),
		SessionID: sessionID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry of a session token and
// returns its identifiers. Any failure maps to ErrInvalidToken; the
// caller does not learn why a token was rejected.
func (c *TokenCodec) Parse(raw string) (userID, sessionID uuid.UUID, err error) {
	claims := &SessionClaims{}

	token, parseErr := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if parseErr != nil || !token.Valid {
		return uuid.Nil, uuid.Nil, domain.ErrInvalidToken
	}

	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.ErrInvalidToken
	}
	sessionID, err = uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.ErrInvalidToken
	}
	return userID, sessionID, nil
}

// GenerateToken returns a URL-safe random string with byteLength bytes
// of entropy. Used for email-change tokens (32 bytes = 256 bits).
func GenerateToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
