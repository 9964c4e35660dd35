package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims of an access token
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies stateless HS256 access tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenCodec creates a codec for access tokens with the given TTL.
// secret should be a cryptographically secure random string.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "stance",
	}
}

// TTL returns the configured access token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed access token for the given subject.
// Returns the token string and its lifetime in seconds.
func (c *TokenCodec) Issue(userID string, isAdmin bool) (string, int64, error) {
	now := time.Now()

	claims := Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, int64(c.ttl.Seconds()), nil
}

// Verify checks signature and expiry of an access token and returns its
// claims. Every failure wraps ErrInvalidAccessToken: a malformed token, a
// bad signature and an expired token are indistinguishable to the caller,
// while the wrapped detail stays available for logging.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidAccessToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidAccessToken)
	}

	return claims, nil
}
