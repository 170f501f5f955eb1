package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/videotube/internal/common"
)

// ReuseError reports a refresh token that differs from the one bound to
// its subject. It matches common.ErrTokenReuseDetected and carries the
// principal whose session must be terminated.
type ReuseError struct {
	PrincipalID string
}

func (e *ReuseError) Error() string {
	return common.ErrTokenReuseDetected.Error()
}

func (e *ReuseError) Unwrap() error {
	return common.ErrTokenReuseDetected
}

// storageError converts a repository error into the service taxonomy.
// Not-found and already-exists pass through; everything else, including
// timeouts, becomes common.ErrStorageFailure.
func storageError(err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrAlreadyExists) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
}
