package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitwiser/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
)

// TokenValidator validates bearer tokens. *auth.JWTManager implements it.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, EmailKey, email)
}

// RequireAuth returns an interceptor that validates the bearer token of every
// request and adds the user ID and email to the request context.
//
// Public procedures (register, login) are let through without a token; a
// valid token on them still populates the context.
func RequireAuth(validator TokenValidator, publicProcedures ...string) connect.UnaryInterceptorFunc {
	public := make(map[string]bool, len(publicProcedures))
	for _, p := range publicProcedures {
		public[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			isPublic := public[req.Spec().Procedure]

			token, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				if isPublic {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := validator.Validate(token)
			if err != nil {
				if isPublic {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithUser(ctx, claims.UserID, claims.Email), req)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" || strings.Contains(token, " ") {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}
