// Package auth signs and verifies the JWTs used as access and refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the standard registered claims. Subject is the principal
// id and ID (jti) is random so that two tokens for the same subject signed
// in the same second still differ.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenSettings is the immutable token configuration built at start-up.
// Access and refresh tokens are signed with distinct secrets.
type TokenSettings struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec signs and verifies HS256 tokens. Expiry is strict: no leeway is
// granted for clock skew.
type Codec struct {
	now func() time.Time
}

func NewCodec() *Codec {
	return &Codec{now: time.Now}
}

// NewCodecWithClock is NewCodec with an injected clock.
func NewCodecWithClock(now func() time.Time) *Codec {
	return &Codec{now: now}
}

var errEmptySecret = errors.New("empty signing secret")

// Sign issues a token for subject that expires ttl from now.
func (c *Codec) Sign(subject string, secret []byte, ttl time.Duration) (string, *Claims, error) {
	if len(secret) == 0 {
		return "", nil, errEmptySecret
	}

	now := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

// Verify parses tokenString and checks its signature and expiry.
// Every failure matches common.ErrInvalidToken; an expired token also
// matches common.ErrTokenExpired.
func (c *Codec) Verify(tokenString string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, errEmptySecret)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
