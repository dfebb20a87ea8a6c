package auth_test

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floroz/hammer/pkg/auth"
	"github.com/floroz/hammer/pkg/testhelpers"
)

func TestAuthInterceptor(t *testing.T) {
	key, pubPEM := testhelpers.GenerateRSAKey(t)
	verifier, err := auth.NewVerifier(pubPEM, "")
	require.NoError(t, err)

	userID := uuid.New()
	interceptor := auth.NewAuthInterceptor(verifier)

	var seen uuid.UUID
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = auth.MustGetUserID(ctx)
		claims, ok := auth.GetUserClaims(ctx)
		require.True(t, ok)
		assert.Equal(t, userID.String(), claims.Subject)
		return connect.NewResponse(&struct{}{}), nil
	}

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
	}{
		{
			name:   "valid bearer token",
			header: "Bearer " + testhelpers.SignToken(t, key, userID, time.Minute),
		},
		{
			name:     "missing header",
			header:   "",
			wantCode: connect.CodeUnauthenticated,
		},
		{
			name:     "missing bearer prefix",
			header:   testhelpers.SignToken(t, key, userID, time.Minute),
			wantCode: connect.CodeUnauthenticated,
		},
		{
			name:     "expired token",
			header:   "Bearer " + testhelpers.SignToken(t, key, userID, -time.Minute),
			wantCode: connect.CodeUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := interceptor(next)(context.Background(), req)
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, userID, seen)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, connect.CodeOf(err))
			assert.Equal(t, uuid.Nil, seen, "handler must not run")
		})
	}
}

func TestGetUserID(t *testing.T) {
	_, ok := auth.GetUserID(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := auth.GetUserID(auth.WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	assert.Panics(t, func() { auth.MustGetUserID(context.Background()) })
}
