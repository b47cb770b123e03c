package jwt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driveease/config"
	"driveease/infras/jwt"
	"driveease/infras/otel/mocks"
)

func newJWT(accessMin int) jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "driveease"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = accessMin
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg, mocks.NewOtel())
}

func TestJWT_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newJWT(15)

	pair, err := svc.GenerateTokenPair(ctx, "user-1", "asha@driveease.in", "user")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.ValidateToken(ctx, pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "asha@driveease.in", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, jwt.AccessToken, claims.Type)

	refresh, err := svc.ValidateToken(ctx, pair.RefreshToken, jwt.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, jwt.RefreshToken, refresh.Type)
}

func TestJWT_ValidateToken(t *testing.T) {
	ctx := context.Background()
	svc := newJWT(15)

	pair, err := svc.GenerateTokenPair(ctx, "user-1", "asha@driveease.in", "user")
	require.NoError(t, err)

	expired, err := newJWT(-5).GenerateTokenPair(ctx, "user-1", "asha@driveease.in", "user")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		kind    jwt.TokenType
		wantErr error
	}{
		{name: "refresh token used as access token", token: pair.RefreshToken, kind: jwt.AccessToken, wantErr: jwt.ErrInvalidToken},
		{name: "garbage", token: "not-a-token", kind: jwt.AccessToken, wantErr: jwt.ErrInvalidToken},
		{name: "expired", token: expired.AccessToken, kind: jwt.AccessToken, wantErr: jwt.ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, tt.token, tt.kind)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer token", header: "Bearer abc.def", want: "abc.def"},
		{name: "missing", header: "", wantErr: jwt.ErrMissingToken},
		{name: "basic auth", header: "Basic abc", wantErr: jwt.ErrMalformed},
		{name: "empty bearer", header: "Bearer ", wantErr: jwt.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
