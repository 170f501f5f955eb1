package grpc

import (
	"context"
	"time"

	pb "github.com/dmitrijs2005/videotube/internal/proto"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// UserService is the subset of services.UserService served over gRPC.
type UserService interface {
	Authenticator
	Register(ctx context.Context, in services.RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, identifier, secret string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, principalID string) error
}

var _ pb.AuthServiceServer = (*Server)(nil)

// stringField returns the first non-empty string among names.
func stringField(req *structpb.Struct, names ...string) string {
	fields := req.GetFields()
	for _, n := range names {
		if s := fields[n].GetStringValue(); s != "" {
			return s
		}
	}
	return ""
}

func profileFields(p *models.Profile) map[string]any {
	return map[string]any{
		"id":        p.ID,
		"username":  p.Username,
		"email":     p.Email,
		"fullName":  p.FullName,
		"createdAt": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func tokenFields(pair *models.TokenPair) map[string]any {
	return map[string]any{
		"accessToken":      pair.AccessToken,
		"refreshToken":     pair.RefreshToken,
		"accessExpiresAt":  pair.AccessExpiresAt.UTC().Format(time.RFC3339Nano),
		"refreshExpiresAt": pair.RefreshExpiresAt.UTC().Format(time.RFC3339Nano),
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return st, nil
}

func (s *Server) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Registration request")

	profile, err := s.users.Register(ctx, services.RegisterInput{
		Username: stringField(req, "username"),
		Email:    stringField(req, "email"),
		FullName: stringField(req, "fullName"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(profileFields(profile))
}

// Login accepts {identifier, secret}; username/email and password are
// accepted as aliases, as on the HTTP API.
func (s *Server) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	result, err := s.users.Login(ctx,
		stringField(req, "identifier", "username", "email"),
		stringField(req, "secret", "password"))
	if err != nil {
		return nil, toStatus(err)
	}

	fields := tokenFields(result.Tokens)
	fields["user"] = profileFields(result.Profile)
	return newStruct(fields)
}

func (s *Server) Refresh(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {

	pair, err := s.users.Refresh(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(tokenFields(pair))
}

func (s *Server) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {

	p, ok := services.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	if err := s.users.Logout(ctx, p.ID); err != nil {
		return nil, toStatus(err)
	}

	return &emptypb.Empty{}, nil
}

func (s *Server) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	p, ok := services.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	return newStruct(profileFields(p))
}
