package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupcard/internal/auth"
	"github.com/mmynk/groupcard/internal/models"
	pb "github.com/mmynk/groupcard/pkg/groupcardv1"
)

// AuthService implements the AuthService RPC interface for merchant terminals.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// RegisterTerminal creates a terminal and returns a session token for it.
func (s *AuthService) RegisterTerminal(ctx context.Context, req *connect.Request[pb.RegisterTerminalRequest]) (*connect.Response[pb.RegisterTerminalResponse], error) {
	s.logger.Info("RegisterTerminal request", "name", req.Msg.Name)

	terminal, err := s.authenticator.RegisterTerminal(ctx, req.Msg.Name, req.Msg.Secret)
	if err != nil {
		s.logger.Error("Terminal registration failed", "name", req.Msg.Name, "error", err)
		if errors.Is(err, auth.ErrWeakSecret) || errors.Is(err, auth.ErrMissingName) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(terminal)
	if err != nil {
		s.logger.Error("Failed to generate token", "terminal_id", terminal.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Terminal registered", "terminal_id", terminal.ID, "name", terminal.Name)
	return connect.NewResponse(&pb.RegisterTerminalResponse{
		Terminal: terminalToProto(terminal),
		Token:    token,
	}), nil
}

// Login authenticates a terminal and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[pb.LoginRequest]) (*connect.Response[pb.LoginResponse], error) {
	s.logger.Info("Login request", "terminal_id", req.Msg.TerminalId)

	if req.Msg.TerminalId == "" || req.Msg.Secret == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	terminal, err := s.authenticator.Authenticate(ctx, req.Msg.TerminalId, req.Msg.Secret)
	if err != nil {
		s.logger.Warn("Login failed", "terminal_id", req.Msg.TerminalId, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(terminal)
	if err != nil {
		s.logger.Error("Failed to generate token", "terminal_id", terminal.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Terminal logged in", "terminal_id", terminal.ID)
	return connect.NewResponse(&pb.LoginResponse{
		Terminal: terminalToProto(terminal),
		Token:    token,
	}), nil
}

func terminalToProto(t *models.Terminal) *pb.Terminal {
	return &pb.Terminal{Id: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}
