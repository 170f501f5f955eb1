package principals

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
)

// MemoryRepository keeps principals in process memory. It backs the
// "memory" storage backend and the service tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.Principal
	byName map[string]string
	byMail map[string]string
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*models.Principal),
		byName: make(map[string]string),
		byMail: make(map[string]string),
		now:    time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; ok {
		return nil, common.ErrAlreadyExists
	}
	if _, ok := r.byName[p.Username]; ok {
		return nil, common.ErrAlreadyExists
	}
	if _, ok := r.byMail[p.Email]; ok {
		return nil, common.ErrAlreadyExists
	}

	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.RefreshToken = ""

	stored := *p
	r.byID[p.ID] = &stored
	r.byName[p.Username] = p.ID
	r.byMail[p.Email] = p.ID

	return p, nil
}

func (r *MemoryRepository) GetByLogin(ctx context.Context, login string) (*models.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[login]
	if !ok {
		id, ok = r.byMail[login]
	}
	if !ok {
		return nil, common.ErrorNotFound
	}

	p := *r.byID[id]
	return &p, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	p := *stored
	return &p, nil
}

func (r *MemoryRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Profile(), nil
}

func (r *MemoryRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.RefreshToken = token
	p.UpdatedAt = r.now().UTC()

	return nil
}

// Delete removes a principal. It exists for tests that simulate an
// account removed after its tokens were issued.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byName, p.Username)
	delete(r.byMail, p.Email)
	delete(r.byID, id)
}
