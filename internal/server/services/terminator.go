package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
)

// SessionTerminator ends a principal's session by clearing its bound
// refresh token.
type SessionTerminator struct {
	repo principals.Repository
}

func NewSessionTerminator(repo principals.Repository) *SessionTerminator {
	return &SessionTerminator{repo: repo}
}

// Terminate is idempotent. A principal that no longer exists has no session
// to end, so that is a success too; the only failure is
// common.ErrStorageFailure.
func (t *SessionTerminator) Terminate(ctx context.Context, principalID string) error {
	err := t.repo.SetRefreshToken(ctx, principalID, "")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return storageError(err)
}
