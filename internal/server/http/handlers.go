package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is the application surface the handlers need.
type UserService interface {
	Authenticator
	Register(ctx context.Context, in services.RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, identifier, secret string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, principalID string) error
}

// Handler serves the /api/v1 routes.
type Handler struct {
	svc        UserService
	cookies    *CookieManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewHandler(svc UserService, cookies *CookieManager, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{svc: svc, cookies: cookies, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// loginRequest accepts identifier/secret as well as the username, email and
// password aliases.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (r loginRequest) credentials() (string, string) {
	identifier := r.Identifier
	if identifier == "" {
		identifier = r.Username
	}
	if identifier == "" {
		identifier = r.Email
	}
	secret := r.Secret
	if secret == "" {
		secret = r.Password
	}
	return identifier, secret
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	User         *models.Profile `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) Healthcheck(c *gin.Context) {
	respond(c, http.StatusOK, "OK", "OK")
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	profile, err := h.svc.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, profile, "User registered successfully")
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	identifier, secret := req.credentials()
	res, err := h.svc.Login(c.Request.Context(), identifier, secret)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setTokenCookies(c, res.Tokens)

	respond(c, http.StatusOK, loginResponse{
		User:         res.Profile,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Refresh reads the refresh token from its cookie first, then from the
// refreshToken body field. On reuse detection both cookies are cleared.
func (h *Handler) Refresh(c *gin.Context) {
	token := h.cookies.Get(c, common.RefreshTokenCookieName)
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.svc.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrTokenReuseDetected) {
			h.clearTokenCookies(c)
		}
		respondError(c, err)
		return
	}

	h.setTokenCookies(c, pair)

	respond(c, http.StatusOK, tokensResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

// Logout always clears the client cookies, even when the store write
// fails; the failure is still reported.
func (h *Handler) Logout(c *gin.Context) {
	profile, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		respondError(c, common.ErrUnauthenticated)
		return
	}

	err := h.svc.Logout(c.Request.Context(), profile.ID)
	h.clearTokenCookies(c)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{}, "User logged out")
}

func (h *Handler) Me(c *gin.Context) {
	profile, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		respondError(c, common.ErrUnauthenticated)
		return
	}
	respond(c, http.StatusOK, profile, "Current user fetched successfully")
}

func (h *Handler) setTokenCookies(c *gin.Context, pair *models.TokenPair) {
	h.cookies.Set(c, common.AccessTokenCookieName, pair.AccessToken, h.accessTTL)
	h.cookies.Set(c, common.RefreshTokenCookieName, pair.RefreshToken, h.refreshTTL)
}

func (h *Handler) clearTokenCookies(c *gin.Context) {
	h.cookies.Delete(c, common.AccessTokenCookieName)
	h.cookies.Delete(c, common.RefreshTokenCookieName)
}
