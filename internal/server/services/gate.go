package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
)

// Authenticator resolves an access token to the principal it was issued
// for. It never writes to the store.
type Authenticator struct {
	codec  TokenCodec
	secret []byte
	repo   principals.Repository
}

func NewAuthenticator(codec TokenCodec, accessSecret []byte, repo principals.Repository) *Authenticator {
	return &Authenticator{codec: codec, secret: accessSecret, repo: repo}
}

// Authenticate fails with common.ErrUnauthenticated for an empty token,
// common.ErrInvalidToken when verification fails and
// common.ErrPrincipalNotFound when the subject no longer exists.
func (a *Authenticator) Authenticate(ctx context.Context, accessToken string) (*models.Profile, error) {
	if accessToken == "" {
		return nil, common.ErrUnauthenticated
	}

	claims, err := a.codec.Verify(accessToken, a.secret)
	if err != nil {
		return nil, err
	}

	profile, err := a.repo.GetProfileByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		return nil, storageError(err)
	}

	return profile, nil
}

type principalCtxKey struct{}

// ContextWithPrincipal attaches the authenticated profile to ctx.
func ContextWithPrincipal(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the profile attached by the gate, if any.
func PrincipalFromContext(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*models.Profile)
	return p, ok && p != nil
}
