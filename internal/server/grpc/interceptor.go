package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/videotube/internal/common"
	pb "github.com/dmitrijs2005/videotube/internal/proto"
	"github.com/dmitrijs2005/videotube/internal/server/metrics"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Authenticator resolves an access token to a profile.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Profile, error)
}

// Calls served without an access token.
var publicMethods = map[string]bool{
	pb.AuthService_Register_FullMethodName: true,
	pb.AuthService_Login_FullMethodName:    true,
	pb.AuthService_Refresh_FullMethodName:  true,
}

var publicMethodPrefixes = []string{
	"/grpc.health.v1.Health/",
	"/grpc.reflection.",
}

func isPublicMethod(fullMethod string) bool {
	if publicMethods[fullMethod] {
		return true
	}
	for _, p := range publicMethodPrefixes {
		if strings.HasPrefix(fullMethod, p) {
			return true
		}
	}
	return false
}

// tokenFromMetadata prefers the access_token key and falls back to an
// "authorization: Bearer <token>" entry.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		if t := strings.TrimSpace(values[0]); t != "" {
			return t
		}
	}
	if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
		scheme, token, found := strings.Cut(strings.TrimSpace(values[0]), " ")
		if found && strings.EqualFold(scheme, common.BearerScheme) {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func (s *Server) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	if isPublicMethod(fullMethod) {
		return ctx, nil
	}

	profile, err := s.auth.Authenticate(ctx, tokenFromMetadata(ctx))
	if err != nil {
		s.logger.Debug(ctx, "rejected call", "method", fullMethod, "error", err)
		return ctx, toStatus(err)
	}

	return services.ContextWithPrincipal(ctx, profile), nil
}

func (s *Server) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *authenticatedStream) Context() context.Context {
	return w.ctx
}

func (s *Server) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authenticatedStream{ServerStream: ss, ctx: ctx})
}

func (s *Server) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	metrics.GrpcRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	return resp, err
}

// toStatus maps domain errors to gRPC status errors. Errors that already
// carry a status are returned unchanged.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "missing token")
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid user credentials")
	case errors.Is(err, common.ErrTokenReuseDetected):
		return status.Error(codes.Unauthenticated, "refresh token is expired or used")
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid or expired token")
	case errors.Is(err, common.ErrPrincipalNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, common.ErrStorageFailure):
		return status.Error(codes.Unavailable, "storage unavailable")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "user with email or username already exists")
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
