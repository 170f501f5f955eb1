// Package common contains shared constants and sentinel errors used across
// videotube components.
package common

// AccessTokenHeaderName is the gRPC metadata key that may carry the access
// token when no Authorization header is sent.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the HTTP header / gRPC metadata key for the
// bearer carrier.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token in the Authorization value.
const BearerScheme = "Bearer"

// Cookie names for the two token classes.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)
