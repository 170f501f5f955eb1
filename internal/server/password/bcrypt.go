// Package password hashes and compares account secrets with bcrypt.
package password

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/videotube/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt at a fixed cost.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher using cost; out-of-range values fall back to
// bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Only fails for costs outside the range checked above.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("videotube-dummy-secret"), cost)
	return &Hasher{cost: cost, dummy: dummy}
}

func (h *Hasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Compare reports common.ErrInvalidCredentials on any mismatch, including a
// hash that cannot be parsed.
func (h *Hasher) Compare(hash, secret string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrInvalidCredentials
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidCredentials, err)
}

// CompareDummy burns the same time as a real comparison. It is used when no
// principal matches so the response time does not reveal that.
func (h *Hasher) CompareDummy(secret string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(secret))
}
