package http

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig selects the optional parts of the router.
type RouterConfig struct {
	// ClientURL is the single allowed CORS origin; empty disables CORS.
	ClientURL      string
	MetricsEnabled bool
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h *Handler, logger logging.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), MetricsMiddleware())

	if cfg.ClientURL != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.ClientURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/v1")
	api.GET("/healthcheck", h.Healthcheck)

	users := api.Group("/users")
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refresh", h.Refresh)

	secured := users.Group("", AuthGate(h.svc, h.cookies))
	secured.POST("/logout", h.Logout)
	secured.GET("/me", h.Me)

	return r
}
