package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig holds the attributes shared by the token cookies.
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
	Path     string
}

// CookieManager sets, reads and clears the token cookies. Cookies are
// always HttpOnly.
type CookieManager struct {
	config CookieConfig
}

func NewCookieManager(config CookieConfig) *CookieManager {
	if config.Path == "" {
		config.Path = "/"
	}
	return &CookieManager{config: config}
}

// Set writes an HttpOnly cookie that expires after ttl.
func (m *CookieManager) Set(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(m.parseSameSite())
	c.SetCookie(name, value, int(ttl.Seconds()), m.config.Path, m.config.Domain, m.config.Secure, true)
}

// Get returns the cookie value, or "" when it is absent or empty.
func (m *CookieManager) Get(c *gin.Context, name string) string {
	value, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return value
}

// Delete expires the cookie on the client.
func (m *CookieManager) Delete(c *gin.Context, name string) {
	c.SetSameSite(m.parseSameSite())
	c.SetCookie(name, "", -1, m.config.Path, m.config.Domain, m.config.Secure, true)
}

func (m *CookieManager) parseSameSite() http.SameSite {
	switch strings.ToLower(m.config.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		fallthrough
	default:
		return http.SameSiteLaxMode
	}
}
