package services

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
)

// RefreshRotator exchanges the bound refresh token for a new pair.
//
// Two concurrent rotations presenting the same valid token can both pass the
// comparison before either writes; the last write wins and the other
// caller's new refresh token is rejected on its next use.
type RefreshRotator struct {
	codec  TokenCodec
	secret []byte
	repo   principals.Repository
	issuer *TokenIssuer
}

func NewRefreshRotator(codec TokenCodec, refreshSecret []byte, repo principals.Repository, issuer *TokenIssuer) *RefreshRotator {
	return &RefreshRotator{codec: codec, secret: refreshSecret, repo: repo, issuer: issuer}
}

// Rotate validates presented and, when it is the principal's bound token,
// replaces it with a freshly issued pair in a single write. Both new tokens
// are signed before the write, so a signing failure leaves the old token
// valid. A token that is valid but not bound yields a *ReuseError.
func (r *RefreshRotator) Rotate(ctx context.Context, presented string) (*models.TokenPair, error) {
	if presented == "" {
		return nil, common.ErrUnauthenticated
	}

	claims, err := r.codec.Verify(presented, r.secret)
	if err != nil {
		return nil, err
	}

	p, err := r.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		return nil, storageError(err)
	}

	if p.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(p.RefreshToken)) != 1 {
		return nil, &ReuseError{PrincipalID: p.ID}
	}

	pair, err := r.issuer.IssuePair(p.ID)
	if err != nil {
		return nil, err
	}

	if err := r.issuer.Bind(ctx, p.ID, pair.RefreshToken); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		return nil, err
	}

	return pair, nil
}
