package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
)

// TokenCodec signs and verifies tokens. auth.Codec satisfies it.
type TokenCodec interface {
	Sign(subject string, secret []byte, ttl time.Duration) (string, *auth.Claims, error)
	Verify(token string, secret []byte) (*auth.Claims, error)
}

// TokenIssuer mints access/refresh pairs and binds refresh tokens to their
// principal.
type TokenIssuer struct {
	codec    TokenCodec
	settings auth.TokenSettings
	repo     principals.Repository
}

func NewTokenIssuer(codec TokenCodec, settings auth.TokenSettings, repo principals.Repository) *TokenIssuer {
	return &TokenIssuer{codec: codec, settings: settings, repo: repo}
}

// IssuePair signs an access token and a refresh token for principalID.
// It performs no I/O.
func (i *TokenIssuer) IssuePair(principalID string) (*models.TokenPair, error) {
	access, accessClaims, err := i.codec.Sign(principalID, i.settings.AccessSecret, i.settings.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token: %v", common.ErrorInternal, err)
	}

	refresh, refreshClaims, err := i.codec.Sign(principalID, i.settings.RefreshSecret, i.settings.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: sign refresh token: %v", common.ErrorInternal, err)
	}

	return &models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// Bind stores refreshToken as the principal's only valid refresh token.
// It is a system write and skips profile validation.
func (i *TokenIssuer) Bind(ctx context.Context, principalID, refreshToken string) error {
	if err := i.repo.SetRefreshToken(ctx, principalID, refreshToken); err != nil {
		return storageError(err)
	}
	return nil
}
