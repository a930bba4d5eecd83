package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

func newMembershipFixture(t *testing.T) (*repository.Repositories, MembershipService) {
	t.Helper()
	repos := repository.NewRepositories()
	return repos, NewMembershipService(repos.MemberRepo)
}

func TestRegisterDefaultsToTrial(t *testing.T) {
	_, svc := newMembershipFixture(t)

	member, err := svc.Register(context.Background(), RegisterMemberInput{
		Email:    "new@sourcehub.dev",
		Password: "secret-password",
		Name:     "New Member",
	})
	require.NoError(t, err)
	assert.Equal(t, types.TierTrial, member.MembershipTier)
	assert.Equal(t, types.MembershipActive, member.MembershipStatus)
	require.NotNil(t, member.ExpiryDate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *member.ExpiryDate, time.Minute)
	assert.True(t, strings.HasPrefix(member.AccessCardID, "SH-"))
	assert.NotNil(t, member.Skills)
	assert.NotNil(t, member.Interests)
	assert.False(t, member.TrialUsed)

	// Password is stored hashed.
	assert.NotEqual(t, "secret-password", member.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte("secret-password")))
}

func TestRegisterPaidTier(t *testing.T) {
	_, svc := newMembershipFixture(t)

	member, err := svc.Register(context.Background(), RegisterMemberInput{
		Email:    "pro@sourcehub.dev",
		Password: "secret-password",
		Name:     "Pro Member",
		Tier:     types.TierPro,
	})
	require.NoError(t, err)
	assert.Equal(t, types.TierPro, member.MembershipTier)
	require.NotNil(t, member.ExpiryDate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *member.ExpiryDate, time.Minute)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newMembershipFixture(t)
	ctx := context.Background()

	input := RegisterMemberInput{
		Email:    "dupe@sourcehub.dev",
		Password: "secret-password",
		Name:     "First",
	}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrMemberExists)
}

func TestRegisterValidation(t *testing.T) {
	_, svc := newMembershipFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterMemberInput{Email: "", Password: "x", Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterMemberInput{
		Email: "a@b.c", Password: "secret-password", Name: "x", Tier: "platinum",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSuspendAndReactivate(t *testing.T) {
	repos, svc := newMembershipFixture(t)
	ctx := context.Background()
	member := seedMember(t, repos, nil)

	suspended, err := svc.Suspend(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MembershipSuspended, suspended.MembershipStatus)

	reactivated, err := svc.Reactivate(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MembershipActive, reactivated.MembershipStatus)
}

func TestReactivateExpiredMembershipBlocked(t *testing.T) {
	repos, svc := newMembershipFixture(t)
	member := seedMember(t, repos, func(m *repository.Member) {
		m.MembershipStatus = types.MembershipSuspended
		m.ExpiryDate = datePtr(time.Now().Add(-time.Hour))
	})

	_, err := svc.Reactivate(context.Background(), member.ID)
	assert.ErrorIs(t, err, ErrMembershipExpired)
}

func TestReissueAccessCard(t *testing.T) {
	repos, svc := newMembershipFixture(t)
	member := seedMember(t, repos, nil)
	oldCard := member.AccessCardID

	updated, err := svc.ReissueAccessCard(context.Background(), member.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldCard, updated.AccessCardID)
	assert.True(t, strings.HasPrefix(updated.AccessCardID, "SH-"))
}

func TestScholarshipApplyAndRemove(t *testing.T) {
	repos, svc := newMembershipFixture(t)
	ctx := context.Background()
	member := seedMember(t, repos, nil)

	granted, err := svc.ApplyScholarship(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, granted.Scholarship)

	_, err = svc.ApplyScholarship(ctx, member.ID)
	assert.ErrorIs(t, err, ErrScholarshipGranted)

	removed, err := svc.RemoveScholarship(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, removed.Scholarship)
}

func TestExpireOverdue(t *testing.T) {
	repos, svc := newMembershipFixture(t)
	ctx := context.Background()

	overdue := seedMember(t, repos, func(m *repository.Member) {
		m.Email = "overdue@sourcehub.dev"
		m.ExpiryDate = datePtr(time.Now().Add(-time.Hour))
	})
	current := seedMember(t, repos, func(m *repository.Member) {
		m.Email = "current@sourcehub.dev"
	})

	count, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, _ := repos.MemberRepo.FindByID(ctx, overdue.ID)
	assert.Equal(t, types.MembershipExpired, updated.MembershipStatus)
	updated, _ = repos.MemberRepo.FindByID(ctx, current.ID)
	assert.Equal(t, types.MembershipActive, updated.MembershipStatus)
}

func TestUpdateProfile(t *testing.T) {
	repos, svc := newMembershipFixture(t)
	member := seedMember(t, repos, nil)

	name := "Renamed Member"
	unit := "B-12"
	updated, err := svc.UpdateProfile(context.Background(), member.ID, UpdateProfileInput{
		Name:              &name,
		Skills:            []string{"rust"},
		StorageUnitNumber: &unit,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Member", updated.Name)
	assert.Equal(t, []string{"rust"}, updated.Skills)
	require.NotNil(t, updated.StorageUnitNumber)
	assert.Equal(t, "B-12", *updated.StorageUnitNumber)
}

func TestTierPrice(t *testing.T) {
	assert.Equal(t, "50", TierPrice(types.TierBasic).String())
	assert.Equal(t, "100", TierPrice(types.TierPro).String())
	assert.Equal(t, "200", TierPrice(types.TierEnterprise).String())
	assert.True(t, TierPrice(types.TierTrial).IsZero())

	assert.Less(t, TierRank(types.TierTrial), TierRank(types.TierBasic))
	assert.Less(t, TierRank(types.TierBasic), TierRank(types.TierPro))
	assert.Less(t, TierRank(types.TierPro), TierRank(types.TierEnterprise))
}
