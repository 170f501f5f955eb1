// Package services contains server-side business logic: credential
// verification, token issuance, the authentication gate, refresh rotation
// and session termination, plus the UserService facade the transports use.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/logging"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/metrics"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/repositories/principals"
	"github.com/google/uuid"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Profile *models.Profile
	Tokens  *models.TokenPair
}

// UserService provides authentication-related operations:
// - Register: create principals
// - Login: verify credentials, mint and bind a token pair
// - Authenticate: resolve an access token to a profile
// - Refresh: rotate the bound refresh token
// - Logout: clear the bound refresh token
type UserService struct {
	repo       principals.Repository
	hasher     PasswordHasher
	verifier   *CredentialVerifier
	issuer     *TokenIssuer
	gate       *Authenticator
	rotator    *RefreshRotator
	terminator *SessionTerminator
	logger     logging.Logger
	newID      func() string
}

// NewUserService wires the auth components around one repository and one
// immutable token configuration.
func NewUserService(repo principals.Repository, hasher PasswordHasher, codec TokenCodec, settings auth.TokenSettings, logger logging.Logger) *UserService {
	issuer := NewTokenIssuer(codec, settings, repo)
	return &UserService{
		repo:       repo,
		hasher:     hasher,
		verifier:   NewCredentialVerifier(repo, hasher),
		issuer:     issuer,
		gate:       NewAuthenticator(codec, settings.AccessSecret, repo),
		rotator:    NewRefreshRotator(codec, settings.RefreshSecret, repo, issuer),
		terminator: NewSessionTerminator(repo),
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Register creates a principal. All fields are required; username and email
// are stored normalised. A taken username or email yields
// common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	p := &models.Principal{
		ID:       s.newID(),
		Username: common.NormalizeLogin(in.Username),
		Email:    common.NormalizeLogin(in.Email),
		FullName: strings.TrimSpace(in.FullName),
	}

	if err := validateRegistration(p, in.Password); err != nil {
		metrics.RegistrationAttemptsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.RegistrationAttemptsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	p.PasswordHash = hash

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		err = storageError(err)
		if errors.Is(err, common.ErrAlreadyExists) {
			metrics.RegistrationAttemptsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			return nil, fmt.Errorf("%w: username or email is taken", common.ErrAlreadyExists)
		}
		metrics.RegistrationAttemptsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error(ctx, "register failed", "error", err)
		return nil, err
	}

	metrics.RegistrationAttemptsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info(ctx, "principal registered", "principal_id", created.ID)
	return created.Profile(), nil
}

func validateRegistration(p *models.Principal, password string) error {
	switch {
	case p.Username == "":
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	case strings.Contains(p.Username, "@"):
		// usernames and emails share one login namespace
		return fmt.Errorf("%w: username must not contain '@'", common.ErrValidation)
	case p.Email == "":
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	case !strings.Contains(p.Email, "@"):
		return fmt.Errorf("%w: email is malformed", common.ErrValidation)
	case p.FullName == "":
		return fmt.Errorf("%w: full name is required", common.ErrValidation)
	case strings.TrimSpace(password) == "":
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	return nil
}

// Login verifies credentials, then issues a pair and binds its refresh
// token. Binding replaces any previous session of the principal.
func (s *UserService) Login(ctx context.Context, identifier, secret string) (*LoginResult, error) {
	p, err := s.verifier.Verify(ctx, identifier, secret)
	if err != nil {
		s.countLogin(err)
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.logger.Info(ctx, "login rejected")
		} else {
			s.logger.Error(ctx, "login failed", "error", err)
		}
		return nil, err
	}

	pair, err := s.issuer.IssuePair(p.ID)
	if err != nil {
		s.countLogin(err)
		s.logger.Error(ctx, "issue token pair", "principal_id", p.ID, "error", err)
		return nil, err
	}

	if err := s.issuer.Bind(ctx, p.ID, pair.RefreshToken); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			err = common.ErrInvalidCredentials
		}
		s.countLogin(err)
		s.logger.Error(ctx, "bind refresh token", "principal_id", p.ID, "error", err)
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info(ctx, "login succeeded", "principal_id", p.ID)

	return &LoginResult{Profile: p.Profile(), Tokens: pair}, nil
}

func (s *UserService) countLogin(err error) {
	outcome := metrics.OutcomeError
	if errors.Is(err, common.ErrInvalidCredentials) {
		outcome = metrics.OutcomeFailure
	}
	metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// Authenticate resolves an access token; see Authenticator.Authenticate.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.Profile, error) {
	profile, err := s.gate.Authenticate(ctx, accessToken)
	if err != nil {
		metrics.GateRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		if errors.Is(err, common.ErrStorageFailure) {
			s.logger.Error(ctx, "authenticate", "error", err)
		}
		return nil, err
	}
	return profile, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, common.ErrTokenExpired):
		return "expired"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, common.ErrPrincipalNotFound):
		return "principal_not_found"
	default:
		return "storage"
	}
}

// Refresh rotates the presented refresh token. When the token is valid but
// no longer bound, the principal's session is terminated before the
// common.ErrTokenReuseDetected error is returned, forcing a new login.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	pair, err := s.rotator.Rotate(ctx, refreshToken)
	if err == nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		return pair, nil
	}

	var reuse *ReuseError
	if errors.As(err, &reuse) {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeReuse).Inc()
		s.logger.Warn(ctx, "refresh token reuse detected", "principal_id", reuse.PrincipalID)
		if termErr := s.terminator.Terminate(ctx, reuse.PrincipalID); termErr != nil {
			s.logger.Error(ctx, "terminate session after reuse", "principal_id", reuse.PrincipalID, "error", termErr)
		}
		return nil, err
	}

	if errors.Is(err, common.ErrStorageFailure) || errors.Is(err, common.ErrorInternal) {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error(ctx, "refresh failed", "error", err)
	} else {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	}
	return nil, err
}

// Logout terminates the principal's session.
func (s *UserService) Logout(ctx context.Context, principalID string) error {
	if err := s.terminator.Terminate(ctx, principalID); err != nil {
		metrics.LogoutsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error(ctx, "logout failed", "principal_id", principalID, "error", err)
		return err
	}
	metrics.LogoutsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info(ctx, "logout", "principal_id", principalID)
	return nil
}
