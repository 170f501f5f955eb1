package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/password"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSettings = auth.TokenSettings{
	AccessSecret:  []byte("access-secret"),
	RefreshSecret: []byte("refresh-secret"),
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    240 * time.Hour,
}

type testAPI struct {
	router *gin.Engine
	svc    *services.UserService
	repo   *principals.MemoryRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := principals.NewMemoryRepository()
	svc := services.NewUserService(repo, password.NewHasher(bcrypt.MinCost), auth.NewCodec(), testSettings, logging.Nop())
	h := NewHandler(svc, NewCookieManager(CookieConfig{Secure: true, SameSite: "lax"}), testSettings.AccessTTL, testSettings.RefreshTTL)

	api := &testAPI{
		router: NewRouter(h, logging.Nop(), RouterConfig{}),
		svc:    svc,
		repo:   repo,
	}

	_, err := svc.Register(context.Background(), services.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice",
		Password: "s3cret",
	})
	require.NoError(t, err)

	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any, cookies []*http.Cookie, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// envelope decodes an APIResponse with a typed payload.
type envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Code       string `json:"code"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Authenticate(ctx context.Context, token string) (*models.Profile, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *mockUserService) Register(ctx context.Context, in services.RegisterInput) (*models.Profile, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *mockUserService) Login(ctx context.Context, identifier, secret string) (*services.LoginResult, error) {
	args := m.Called(ctx, identifier, secret)
	r, _ := args.Get(0).(*services.LoginResult)
	return r, args.Error(1)
}

func (m *mockUserService) Refresh(ctx context.Context, token string) (*models.TokenPair, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*models.TokenPair)
	return p, args.Error(1)
}

func (m *mockUserService) Logout(ctx context.Context, principalID string) error {
	return m.Called(ctx, principalID).Error(0)
}

func newMockRouter(svc *mockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, NewCookieManager(CookieConfig{}), time.Minute, time.Hour)
	return NewRouter(h, logging.Nop(), RouterConfig{})
}
