package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/logging"
	pb "github.com/dmitrijs2005/videotube/internal/proto"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeAuthenticator struct {
	profile *models.Profile
	err     error
	calls   int
	token   string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Profile, error) {
	f.calls++
	f.token = token
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeStream) Context() context.Context { return f.ctx }

const protectedMethod = pb.AuthService_Me_FullMethodName

func newTestServerAt(address string, auth *fakeAuthenticator) *Server {
	s := NewServer(address, nil, logging.Nop())
	s.auth = auth
	return s
}

func newTestServer(auth *fakeAuthenticator) *Server {
	return newTestServerAt("unused", auth)
}

func TestInterceptor_PublicMethodSkipsAuthentication(t *testing.T) {
	auth := &fakeAuthenticator{}
	s := newTestServer(auth)

	for _, method := range []string{
		"/grpc.health.v1.Health/Check",
		"/grpc.health.v1.Health/Watch",
		"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo",
		pb.AuthService_Register_FullMethodName,
		pb.AuthService_Login_FullMethodName,
		pb.AuthService_Refresh_FullMethodName,
	} {
		handlerCalled := false
		h := func(ctx context.Context, req any) (any, error) {
			handlerCalled = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method}, h)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", method, err)
		}
		if !handlerCalled || resp != "ok" {
			t.Fatalf("%s: handler not called or wrong response %v", method, resp)
		}
	}
	if auth.calls != 0 {
		t.Fatalf("authenticator must not be consulted for public methods, got %d calls", auth.calls)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{})

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: protectedMethod}, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{err: fmt.Errorf("%w: signature is invalid", common.ErrInvalidToken)})

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: "not-a-valid-jwt"})
	ctx := metadata.NewIncomingContext(context.Background(), md)

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called with an invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: protectedMethod}, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_ValidTokenAttachesPrincipal(t *testing.T) {
	profile := &models.Profile{ID: "p-1", Username: "alice"}
	auth := &fakeAuthenticator{profile: profile}
	s := newTestServer(auth)

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: "good-token"})
	ctx := metadata.NewIncomingContext(context.Background(), md)

	var got *models.Profile
	h := func(ctx context.Context, req any) (any, error) {
		p, ok := services.PrincipalFromContext(ctx)
		if !ok {
			t.Fatal("principal not attached to context")
		}
		got = p
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: protectedMethod}, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "p-1" {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if auth.token != "good-token" {
		t.Fatalf("authenticator got token %q", auth.token)
	}
}

func TestInterceptor_StreamAttachesPrincipal(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{profile: &models.Profile{ID: "p-2"}})

	md := metadata.Pairs(common.AuthorizationHeaderName, "Bearer stream-token")
	ss := &fakeStream{ctx: metadata.NewIncomingContext(context.Background(), md)}

	called := false
	h := func(srv any, stream grpc.ServerStream) error {
		called = true
		p, ok := services.PrincipalFromContext(stream.Context())
		if !ok || p.ID != "p-2" {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return nil
	}

	if err := s.streamAccessTokenInterceptor(nil, ss, &grpc.StreamServerInfo{FullMethod: protectedMethod}, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("stream handler was not called")
	}
}

func TestInterceptor_StreamRejectsMissingToken(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{})
	ss := &fakeStream{ctx: context.Background()}

	h := func(srv any, stream grpc.ServerStream) error {
		t.Fatal("stream handler should not be called")
		return nil
	}

	err := s.streamAccessTokenInterceptor(nil, ss, &grpc.StreamServerInfo{FullMethod: protectedMethod}, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestIsPublicMethod(t *testing.T) {
	tests := []struct {
		method string
		want   bool
	}{
		{pb.AuthService_Login_FullMethodName, true},
		{pb.AuthService_Register_FullMethodName, true},
		{pb.AuthService_Refresh_FullMethodName, true},
		{pb.AuthService_Logout_FullMethodName, false},
		{pb.AuthService_Me_FullMethodName, false},
		{pb.AuthService_Login_FullMethodName + "X", false},
		{"/grpc.health.v1.Health/Check", true},
	}
	for _, tt := range tests {
		if got := isPublicMethod(tt.method); got != tt.want {
			t.Errorf("isPublicMethod(%q) = %v, want %v", tt.method, got, tt.want)
		}
	}
}

func TestTokenFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   metadata.MD
		want string
	}{
		{"none", nil, ""},
		{"access token key", metadata.Pairs(common.AccessTokenHeaderName, "t1"), "t1"},
		{"bearer", metadata.Pairs(common.AuthorizationHeaderName, "Bearer t2"), "t2"},
		{"bearer lowercase", metadata.Pairs(common.AuthorizationHeaderName, "bearer   t3 "), "t3"},
		{"basic scheme ignored", metadata.Pairs(common.AuthorizationHeaderName, "Basic dXNlcg=="), ""},
		{"scheme only", metadata.Pairs(common.AuthorizationHeaderName, "Bearer"), ""},
		{"access token preferred", metadata.Pairs(
			common.AccessTokenHeaderName, "from-key",
			common.AuthorizationHeaderName, "Bearer from-header",
		), "from-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			if got := tokenFromMetadata(ctx); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{common.ErrUnauthenticated, codes.Unauthenticated},
		{common.ErrInvalidCredentials, codes.Unauthenticated},
		{&services.ReuseError{PrincipalID: "x"}, codes.Unauthenticated},
		{fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired), codes.Unauthenticated},
		{common.ErrPrincipalNotFound, codes.NotFound},
		{fmt.Errorf("%w: conn refused", common.ErrStorageFailure), codes.Unavailable},
		{common.ErrAlreadyExists, codes.AlreadyExists},
		{fmt.Errorf("%w: password is required", common.ErrValidation), codes.InvalidArgument},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.PermissionDenied, "nope"), codes.PermissionDenied},
	}

	for _, tt := range tests {
		if got := status.Code(toStatus(tt.err)); got != tt.want {
			t.Errorf("toStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}

	if toStatus(nil) != nil {
		t.Error("toStatus(nil) must be nil")
	}
}
