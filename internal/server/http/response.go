package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
}

// Error codes reported in APIResponse.Code.
const (
	CodeInvalidCredentials = "InvalidCredentials"
	CodeUnauthenticated    = "Unauthenticated"
	CodeInvalidToken       = "InvalidToken"
	CodePrincipalNotFound  = "PrincipalNotFound"
	CodeTokenReuseDetected = "TokenReuseDetected"
	CodeStorageFailure     = "StorageFailure"
	CodeAlreadyExists      = "AlreadyExists"
	CodeValidation         = "ValidationError"
	CodeInternal           = "InternalError"
)

// APIError is the client-facing form of a service error.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// ToAPIError maps the service error taxonomy to HTTP status codes. Internal
// details are never exposed except for validation messages.
func ToAPIError(err error) APIError {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return APIError{http.StatusUnauthorized, CodeInvalidCredentials, "invalid user credentials"}
	case errors.Is(err, common.ErrUnauthenticated):
		return APIError{http.StatusUnauthorized, CodeUnauthenticated, "unauthorized request"}
	case errors.Is(err, common.ErrTokenReuseDetected):
		return APIError{http.StatusUnauthorized, CodeTokenReuseDetected, "refresh token is expired or used, please log in again"}
	case errors.Is(err, common.ErrInvalidToken):
		return APIError{http.StatusUnauthorized, CodeInvalidToken, "invalid or expired token"}
	case errors.Is(err, common.ErrPrincipalNotFound):
		return APIError{http.StatusNotFound, CodePrincipalNotFound, "user not found"}
	case errors.Is(err, common.ErrStorageFailure):
		return APIError{http.StatusServiceUnavailable, CodeStorageFailure, "storage unavailable, try again later"}
	case errors.Is(err, common.ErrAlreadyExists):
		return APIError{http.StatusConflict, CodeAlreadyExists, "user with email or username already exists"}
	case errors.Is(err, common.ErrValidation):
		return APIError{http.StatusBadRequest, CodeValidation, err.Error()}
	default:
		return APIError{http.StatusInternalServerError, CodeInternal, "internal server error"}
	}
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func respondError(c *gin.Context, err error) {
	apiErr := ToAPIError(err)
	c.AbortWithStatusJSON(apiErr.Status, APIResponse{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Success:    false,
		Code:       apiErr.Code,
	})
}
