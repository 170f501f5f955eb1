// Package principals stores account records: lookup keys, password hash and
// the single bound refresh token.
package principals

import (
	"context"

	"github.com/dmitrijs2005/videotube/internal/server/models"
)

// Repository is the credential store used by the auth services.
// Lookups return common.ErrorNotFound when nothing matches and Create
// returns common.ErrAlreadyExists on a duplicate username or email.
type Repository interface {
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)
	GetByLogin(ctx context.Context, login string) (*models.Principal, error)
	GetByID(ctx context.Context, id string) (*models.Principal, error)
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	// SetRefreshToken overwrites the bound refresh token in one write;
	// "" clears it.
	SetRefreshToken(ctx context.Context, id, token string) error
}
