package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sourcehub/hub-backend/internal/config"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

func newAuthFixture(t *testing.T) (*repository.Repositories, AuthService) {
	t.Helper()
	repos := repository.NewRepositories()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: 1, RefreshExpiry: 1}
	return repos, NewAuthService(cfg, repos.MemberRepo)
}

func seedLoginMember(t *testing.T, repos *repository.Repositories, password string, mutate func(*repository.Member)) *repository.Member {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return seedMember(t, repos, func(m *repository.Member) {
		m.PasswordHash = string(hash)
		if mutate != nil {
			mutate(m)
		}
	})
}

func TestLogin(t *testing.T) {
	repos, svc := newAuthFixture(t)
	member := seedLoginMember(t, repos, "correct-horse", nil)

	got, access, refresh, err := svc.Login(context.Background(), member.Email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, member.ID, got.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	token, err := svc.ValidateToken(access)
	require.NoError(t, err)
	memberID, err := svc.GetMemberIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, member.ID, memberID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repos, svc := newAuthFixture(t)
	member := seedLoginMember(t, repos, "correct-horse", nil)
	ctx := context.Background()

	_, _, _, err := svc.Login(ctx, member.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(ctx, "nobody@sourcehub.dev", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSuspendedMemberBlocked(t *testing.T) {
	repos, svc := newAuthFixture(t)
	member := seedLoginMember(t, repos, "correct-horse", func(m *repository.Member) {
		m.MembershipStatus = types.MembershipSuspended
	})

	_, _, _, err := svc.Login(context.Background(), member.Email, "correct-horse")
	assert.ErrorIs(t, err, ErrMembershipInactive)
}

func TestRefreshToken(t *testing.T) {
	repos, svc := newAuthFixture(t)
	member := seedLoginMember(t, repos, "correct-horse", nil)
	ctx := context.Background()

	_, access, refresh, err := svc.Login(ctx, member.Email, "correct-horse")
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	// Access tokens are not accepted as refresh tokens.
	_, _, err = svc.RefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.RefreshToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
