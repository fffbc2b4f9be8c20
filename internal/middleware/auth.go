package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/groupcard/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// TerminalIDKey is the context key for the authenticated terminal ID.
	TerminalIDKey contextKey = "terminal_id"
	// TerminalNameKey is the context key for the authenticated terminal's name.
	TerminalNameKey contextKey = "terminal_name"
)

// GetTerminalID extracts the terminal ID from the context.
// Returns empty string if not found.
func GetTerminalID(ctx context.Context) string {
	id, _ := ctx.Value(TerminalIDKey).(string)
	return id
}

// GetTerminalName extracts the terminal name from the context.
func GetTerminalName(ctx context.Context) string {
	name, _ := ctx.Value(TerminalNameKey).(string)
	return name
}

// bearerToken returns the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, TerminalIDKey, claims.TerminalID)
	return context.WithValue(ctx, TerminalNameKey, claims.TerminalName)
}

// RequireAuth returns an interceptor that rejects calls without a valid
// terminal token and adds the terminal identity to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			header := req.Header().Get("Authorization")
			if header == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}
			token, ok := bearerToken(header)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(withClaims(ctx, claims), req)
		}
	}
}

// OptionalAuth returns an interceptor that records the terminal identity
// when a valid token is present and lets every call through.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token, ok := bearerToken(req.Header().Get("Authorization")); ok {
				if claims, err := jwtManager.Validate(token); err == nil {
					ctx = withClaims(ctx, claims)
				}
			}
			return next(ctx, req)
		}
	}
}
