package principals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/videotube/internal/server/models"
)

// timeoutRepository bounds every call to the wrapped repository.
type timeoutRepository struct {
	next    Repository
	timeout time.Duration
}

// WithTimeout wraps repo so that each call runs under a context deadline of
// at most d. A non-positive d returns repo unchanged.
func WithTimeout(repo Repository, d time.Duration) Repository {
	if d <= 0 {
		return repo
	}
	return &timeoutRepository{next: repo, timeout: d}
}

func (r *timeoutRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.Create(ctx, p)
}

func (r *timeoutRepository) GetByLogin(ctx context.Context, login string) (*models.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.GetByLogin(ctx, login)
}

func (r *timeoutRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.GetByID(ctx, id)
}

func (r *timeoutRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.GetProfileByID(ctx, id)
}

func (r *timeoutRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.SetRefreshToken(ctx, id, token)
}
