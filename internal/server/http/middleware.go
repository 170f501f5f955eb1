package http

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/metrics"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Authenticator resolves an access token to a profile.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Profile, error)
}

// AuthGate rejects requests without a valid access token and attaches the
// resolved profile to the request context.
//
// The accessToken cookie takes precedence over the Authorization header.
// A header with a scheme other than Bearer counts as absent.
func AuthGate(auth Authenticator, cookies *CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessTokenFromRequest(c, cookies)

		profile, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(services.ContextWithPrincipal(c.Request.Context(), profile))
		c.Next()
	}
}

func accessTokenFromRequest(c *gin.Context, cookies *CookieManager) string {
	if token := cookies.Get(c, common.AccessTokenCookieName); token != "" {
		return token
	}
	return bearerToken(c.GetHeader("Authorization"))
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequestLogger logs one line per request and puts the request id into the
// request context for downstream loggers. Query strings are not logged.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), requestID))

		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// MetricsMiddleware records request counts, status codes and latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.RequestsTotal.Inc()

		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		metrics.ResponsesTotal.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDurationByPath.WithLabelValues(c.Request.Method, c.FullPath()).Observe(duration)
	}
}
