package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupGateRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthGate(auth, NewCookieManager(CookieConfig{})))
	router.GET("/test", func(c *gin.Context) {
		p, ok := services.PrincipalFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})
	return router
}

func TestAuthGate_CookieTakesPrecedence(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Authenticate", mock.Anything, "cookie-token").Return(&models.Profile{ID: "from-cookie"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	rr := httptest.NewRecorder()
	setupGateRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"from-cookie"}`, rr.Body.String())
	svc.AssertNotCalled(t, "Authenticate", mock.Anything, "header-token")
	svc.AssertExpectations(t)
}

func TestAuthGate_FallsBackToBearer(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Authenticate", mock.Anything, "header-token").Return(&models.Profile{ID: "from-header"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "bearer  header-token ")
	rr := httptest.NewRecorder()
	setupGateRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"from-header"}`, rr.Body.String())
}

func TestAuthGate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", common.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
		{"invalid", common.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken},
		{"not found", common.ErrPrincipalNotFound, http.StatusNotFound, CodePrincipalNotFound},
		{"storage", common.ErrStorageFailure, http.StatusServiceUnavailable, CodeStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockUserService)
			svc.On("Authenticate", mock.Anything, "").Return(nil, tt.err)

			rr := httptest.NewRecorder()
			setupGateRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"Bearer":         "",
		"Bearer abc":     "abc",
		"BEARER abc":     "abc",
		"Basic abc":      "",
		"Token abc":      "",
		"  Bearer  abc ": "abc",
	}
	for header, want := range tests {
		assert.Equal(t, want, bearerToken(header), "header %q", header)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logging.Nop()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "req-1", rr.Header().Get(RequestIDHeader))
}

func TestRequestLogger_PutsRequestIDIntoContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger, err := logging.New(&buf, logging.BackendSlog, "text", "info")
	require.NoError(t, err)

	var seen string
	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		seen = logging.RequestIDFromContext(c.Request.Context())
		logger.Info(c.Request.Context(), "handler line")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-9")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-9", seen)
	out := buf.String()
	assert.Contains(t, out, "msg=\"handler line\" request_id=req-9")
	assert.Contains(t, out, "msg=\"http request\"")
	assert.Equal(t, 2, strings.Count(out, "request_id=req-9"))
}

func TestRouter_CORSAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(new(mockUserService), NewCookieManager(CookieConfig{}), 0, 0)
	router := NewRouter(h, logging.Nop(), RouterConfig{ClientURL: "http://localhost:3000", MetricsEnabled: true})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "videotube_http_requests_total")
}
