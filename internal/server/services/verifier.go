package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
)

// PasswordHasher hashes and compares secrets. password.Hasher satisfies it.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) error
	CompareDummy(secret string)
}

// CredentialVerifier checks an identifier/secret pair against the store.
type CredentialVerifier struct {
	repo   principals.Repository
	hasher PasswordHasher
}

func NewCredentialVerifier(repo principals.Repository, hasher PasswordHasher) *CredentialVerifier {
	return &CredentialVerifier{repo: repo, hasher: hasher}
}

// Verify returns the principal whose username or email equals identifier
// and whose password hash matches secret. An unknown identifier and a wrong
// secret both yield common.ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, identifier, secret string) (*models.Principal, error) {
	login := common.NormalizeLogin(identifier)
	if login == "" || secret == "" {
		v.hasher.CompareDummy(secret)
		return nil, common.ErrInvalidCredentials
	}

	p, err := v.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			v.hasher.CompareDummy(secret)
			return nil, common.ErrInvalidCredentials
		}
		return nil, storageError(err)
	}

	if err := v.hasher.Compare(p.PasswordHash, secret); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return p, nil
}
