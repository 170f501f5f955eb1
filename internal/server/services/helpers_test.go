package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/password"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSettings = auth.TokenSettings{
	AccessSecret:  []byte("access-secret"),
	RefreshSecret: []byte("refresh-secret"),
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    240 * time.Hour,
}

// testClock is a settable clock shared by the codec under test.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	repo   *principals.MemoryRepository
	hasher *password.Hasher
	clock  *testClock
	codec  *auth.Codec
	svc    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   principals.NewMemoryRepository(),
		hasher: password.NewHasher(bcrypt.MinCost),
		clock:  &testClock{now: time.Now()},
	}
	f.codec = auth.NewCodecWithClock(f.clock.Now)
	f.svc = NewUserService(f.repo, f.hasher, f.codec, testSettings, logging.Nop())
	return f
}

// register creates alice with password "s3cret" and returns her profile.
func (f *fixture) register(t *testing.T) *models.Profile {
	t.Helper()
	p, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "Alice",
		Email:    "Alice@Example.com",
		FullName: "Alice Liddell",
		Password: "s3cret",
	})
	require.NoError(t, err)
	return p
}

var errStore = errors.New("store unavailable")

// brokenRepo fails every call that has its flag set and delegates the rest.
type brokenRepo struct {
	principals.Repository
	failGetByLogin bool
	failGetByID    bool
	failProfile    bool
	failSet        bool
	sets           int
}

func (r *brokenRepo) GetByLogin(ctx context.Context, login string) (*models.Principal, error) {
	if r.failGetByLogin {
		return nil, errStore
	}
	return r.Repository.GetByLogin(ctx, login)
}

func (r *brokenRepo) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	if r.failGetByID {
		return nil, errStore
	}
	return r.Repository.GetByID(ctx, id)
}

func (r *brokenRepo) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	if r.failProfile {
		return nil, context.DeadlineExceeded
	}
	return r.Repository.GetProfileByID(ctx, id)
}

func (r *brokenRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	r.sets++
	if r.failSet {
		return errStore
	}
	return r.Repository.SetRefreshToken(ctx, id, token)
}

// failingCodec signs normally until failAfter successful signatures.
type failingCodec struct {
	TokenCodec
	failAfter int
	signed    int
}

func (c *failingCodec) Sign(subject string, secret []byte, ttl time.Duration) (string, *auth.Claims, error) {
	if c.signed >= c.failAfter {
		return "", nil, errors.New("signer down")
	}
	c.signed++
	return c.TokenCodec.Sign(subject, secret, ttl)
}
