package service

import (
	"context"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/cache"
	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Sup3r-Secret-Pass!"

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.auth.Signup(ctx, SignupInput{
		Username: "newbie", Email: "newbie@example.com", Password: strongPassword, ConfirmPassword: strongPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	require.NotNil(t, res.User.Profile)
	assert.Equal(t, models.DefaultProfilePic, res.User.Profile.ProfilePic)
	assert.NotEqual(t, strongPassword, res.User.Password)

	claims, err := middleware.ParseToken("test-secret-with-enough-length-000", res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	tests := []struct {
		name string
		in   SignupInput
		code string
	}{
		{"missing email", SignupInput{Username: "x1x", Password: strongPassword, ConfirmPassword: strongPassword}, models.CodeValidation},
		{"weak password", SignupInput{Username: "other", Email: "o@example.com", Password: "short", ConfirmPassword: "short"}, models.CodeValidation},
		{"mismatch", SignupInput{Username: "other", Email: "o@example.com", Password: strongPassword, ConfirmPassword: strongPassword + "x"}, models.CodeValidation},
		{"username taken", SignupInput{Username: "newbie", Email: "o@example.com", Password: strongPassword, ConfirmPassword: strongPassword}, models.CodeConflict},
		{"email taken", SignupInput{Username: "other", Email: "NEWBIE@example.com", Password: strongPassword, ConfirmPassword: strongPassword}, models.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.auth.Signup(ctx, tt.in)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}
	assert.Equal(t, int64(1), h.count(t, &models.User{}, ""))
}

func TestLoginAndLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.Signup(ctx, SignupInput{
		Username: "walker", Email: "walker@example.com", Password: strongPassword, ConfirmPassword: strongPassword,
	})
	require.NoError(t, err)

	for _, login := range []string{"walker", "Walker@Example.com"} {
		res, err := h.auth.Login(ctx, LoginInput{Login: login, Password: strongPassword})
		require.NoError(t, err, login)
		assert.Equal(t, "walker", res.User.Username)
	}

	_, err = h.auth.Login(ctx, LoginInput{Login: "walker", Password: "wrong"})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
	_, err = h.auth.Login(ctx, LoginInput{Login: "ghost", Password: strongPassword})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))

	res, err := h.auth.Login(ctx, LoginInput{Login: "walker", Password: strongPassword})
	require.NoError(t, err)
	claims, err := middleware.ParseToken("test-secret-with-enough-length-000", res.Token)
	require.NoError(t, err)

	require.NoError(t, h.auth.Logout(ctx, claims))
	assert.True(t, h.cache.IsRevoked(ctx, claims.JTI))
	assert.True(t, h.redis.Exists(cache.BlacklistKey(claims.JTI)))
	assert.Greater(t, h.redis.TTL(cache.BlacklistKey(claims.JTI)).Hours(), 24.0)
}
