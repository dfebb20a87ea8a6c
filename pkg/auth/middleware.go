package auth

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	tokenHeader              = "Authorization"
	tokenPrefix              = "Bearer "
	UserClaimsKey contextKey = "user_claims"
	UserIDKey     contextKey = "user_id"
)

// NewAuthInterceptor creates a ConnectRPC interceptor that rejects calls without a valid bearer token
func NewAuthInterceptor(verifier *Verifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get(tokenHeader)
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing authorization header"))
			}

			if !strings.HasPrefix(authHeader, tokenPrefix) {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid authorization header format"))
			}

			token := strings.TrimPrefix(authHeader, tokenPrefix)
			claims, err := verifier.ValidateToken(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid or expired token"))
			}

			ctx = WithUserID(ctx, uuid.MustParse(claims.Subject))
			ctx = context.WithValue(ctx, UserClaimsKey, claims)

			return next(ctx, req)
		}
	}
}

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserClaims retrieves the full claims from the context.
func GetUserClaims(ctx context.Context) (*jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*jwt.RegisteredClaims)
	return claims, ok
}

// GetUserID retrieves the user ID from the context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// MustGetUserID is for handlers mounted behind the interceptor
func MustGetUserID(ctx context.Context) uuid.UUID {
	id, ok := GetUserID(ctx)
	if !ok {
		panic("auth: no user id in context")
	}
	return id
}
