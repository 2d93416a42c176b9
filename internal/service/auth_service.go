package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitwiser/internal/auth"
	"github.com/mmynk/splitwiser/internal/storage"
)

const (
	minSearchQuery     = 2
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if strings.TrimSpace(req.Msg.Email) == "" {
		return nil, invalidArgument("email required")
	}
	if strings.TrimSpace(req.Msg.DisplayName) == "" {
		return nil, invalidArgument("display name required")
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, strings.TrimSpace(req.Msg.DisplayName), req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&RegisterResponse{User: toUser(user), Token: token}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&LoginResponse{User: toUser(user), Token: token}), nil
}

// GetCurrentUser returns the currently authenticated user's information.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetCurrentUser request", "user_id", userID)

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("GetCurrentUser failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetCurrentUserResponse{User: toUser(user)}), nil
}

// SearchUsers finds other users by display name or email.
func (s *AuthService) SearchUsers(ctx context.Context, req *connect.Request[SearchUsersRequest]) (*connect.Response[SearchUsersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(req.Msg.Query)
	if len([]rune(query)) < minSearchQuery {
		return nil, invalidArgument("search query must be at least %d characters", minSearchQuery)
	}

	limit := req.Msg.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	s.logger.Info("SearchUsers request", "user_id", userID, "query", query, "limit", limit)

	// One extra row so excluding the caller still fills the page.
	found, err := s.users.SearchUsers(ctx, query, limit+1)
	if err != nil {
		s.logger.Error("SearchUsers failed", "error", err)
		return nil, toConnectError(err)
	}

	users := make([]*User, 0, len(found))
	for _, u := range found {
		if u.ID == userID || len(users) == limit {
			continue
		}
		users = append(users, toUser(u))
	}

	return connect.NewResponse(&SearchUsersResponse{Users: users}), nil
}
