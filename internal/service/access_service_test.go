package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

func newAccessFixture(t *testing.T) (*repository.Repositories, AccessService) {
	t.Helper()
	repos := repository.NewRepositories()
	svc := NewAccessService(repos.MemberRepo, repos.WorkspaceRepo, repos.BookingRepo, repos.AccessLogRepo)
	return repos, svc
}

func TestVerifyAccessUnknownCard(t *testing.T) {
	repos, svc := newAccessFixture(t)
	ctx := context.Background()

	result, err := svc.VerifyAccess(ctx, AccessAttempt{
		Identifier:   "SH-DOES-NOT-EXIST",
		AccessMethod: types.AccessIDCard,
	})
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "Member not found", result.Reason)
	assert.Nil(t, result.Member)

	// The denied attempt is still logged, without a member reference.
	require.NotNil(t, result.Log)
	assert.False(t, result.Log.Granted)
	assert.Nil(t, result.Log.MemberID)

	stats, err := repos.AccessLogRepo.Stats(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Denied)
}

func TestVerifyAccessSuspendedMember(t *testing.T) {
	repos, svc := newAccessFixture(t)
	member := seedMember(t, repos, func(m *repository.Member) {
		m.MembershipStatus = types.MembershipSuspended
	})

	result, err := svc.VerifyAccess(context.Background(), AccessAttempt{
		Identifier:   member.ID,
		AccessMethod: types.AccessMobileApp,
	})
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "Membership is suspended", result.Reason)
	require.NotNil(t, result.Member)
}

func TestVerifyAccessExpiredMembership(t *testing.T) {
	repos, svc := newAccessFixture(t)
	member := seedMember(t, repos, func(m *repository.Member) {
		m.ExpiryDate = datePtr(time.Now().Add(-time.Hour))
	})

	result, err := svc.VerifyAccess(context.Background(), AccessAttempt{
		Identifier:   member.AccessCardID,
		AccessMethod: types.AccessIDCard,
	})
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "Membership has expired", result.Reason)
}

func TestVerifyAccessWorkspaceRequiresBooking(t *testing.T) {
	repos, svc := newAccessFixture(t)
	ctx := context.Background()
	member := seedMember(t, repos, nil)

	result, err := svc.VerifyAccess(ctx, AccessAttempt{
		Identifier:   member.ID,
		AccessMethod: types.AccessBiometric,
		WorkspaceID:  "ws-booked-room",
	})
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, "No active booking for this workspace", result.Reason)

	booking := &repository.Booking{
		MemberID:      member.ID,
		WorkspaceID:   "ws-booked-room",
		BookingType:   types.BookingHourly,
		StartTime:     time.Now().Add(-time.Hour),
		EndTime:       time.Now().Add(time.Hour),
		Status:        types.BookingConfirmed,
		TotalPrice:    decimal.NewFromInt(25),
		PaymentStatus: types.PaymentPaid,
	}
	require.NoError(t, repos.BookingRepo.Create(ctx, booking))

	result, err = svc.VerifyAccess(ctx, AccessAttempt{
		Identifier:   member.ID,
		AccessMethod: types.AccessBiometric,
		WorkspaceID:  "ws-booked-room",
	})
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "Access granted", result.Reason)
}

func TestVerifyAccessFacilityEntry(t *testing.T) {
	repos, svc := newAccessFixture(t)
	member := seedMember(t, repos, nil)

	// Entering the facility itself needs no booking.
	result, err := svc.VerifyAccess(context.Background(), AccessAttempt{
		Identifier:   member.AccessCardID,
		AccessMethod: types.AccessIDCard,
	})
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "Access granted", result.Reason)
}

func TestVerifyAccessInvalidMethod(t *testing.T) {
	_, svc := newAccessFixture(t)

	_, err := svc.VerifyAccess(context.Background(), AccessAttempt{
		Identifier:   "anything",
		AccessMethod: "carrier-pigeon",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogExitAndOccupants(t *testing.T) {
	repos, svc := newAccessFixture(t)
	ctx := context.Background()
	member := seedMember(t, repos, nil)

	result, err := svc.VerifyAccess(ctx, AccessAttempt{
		Identifier:   member.ID,
		AccessMethod: types.AccessMobileApp,
	})
	require.NoError(t, err)
	require.True(t, result.Granted)

	occupants, err := svc.CurrentOccupants(ctx, "")
	require.NoError(t, err)
	require.Len(t, occupants, 1)
	assert.Equal(t, member.ID, occupants[0].Member.ID)

	log, err := svc.LogExit(ctx, result.Log.ID)
	require.NoError(t, err)
	require.NotNil(t, log.ExitTime)
	exitedAt := *log.ExitTime

	occupants, err = svc.CurrentOccupants(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, occupants)

	// A log that is already closed cannot be closed again, and its
	// recorded exit time stays put.
	_, err = svc.LogExit(ctx, result.Log.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	closed, err := repos.AccessLogRepo.FindByID(ctx, result.Log.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ExitTime)
	assert.Equal(t, exitedAt, *closed.ExitTime)

	_, err = svc.LogExit(ctx, "no-such-log")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentOccupantsByWorkspace(t *testing.T) {
	repos, svc := newAccessFixture(t)
	ctx := context.Background()
	member := seedMember(t, repos, nil)

	booking := &repository.Booking{
		MemberID:      member.ID,
		WorkspaceID:   "ws-occupied",
		BookingType:   types.BookingHourly,
		StartTime:     time.Now().Add(-time.Hour),
		EndTime:       time.Now().Add(time.Hour),
		Status:        types.BookingConfirmed,
		TotalPrice:    decimal.NewFromInt(25),
		PaymentStatus: types.PaymentPaid,
	}
	require.NoError(t, repos.BookingRepo.Create(ctx, booking))

	_, err := svc.VerifyAccess(ctx, AccessAttempt{
		Identifier:   member.ID,
		AccessMethod: types.AccessMobileApp,
		WorkspaceID:  "ws-occupied",
	})
	require.NoError(t, err)

	occupants, err := svc.CurrentOccupants(ctx, "ws-occupied")
	require.NoError(t, err)
	require.Len(t, occupants, 1)

	occupants, err = svc.CurrentOccupants(ctx, "ws-other")
	require.NoError(t, err)
	assert.Empty(t, occupants)
}

func TestMemberHistory(t *testing.T) {
	repos, svc := newAccessFixture(t)
	ctx := context.Background()
	member := seedMember(t, repos, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.VerifyAccess(ctx, AccessAttempt{
			Identifier:   member.ID,
			AccessMethod: types.AccessMobileApp,
		})
		require.NoError(t, err)
	}

	logs, err := svc.MemberHistory(ctx, member.ID, 2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	_, err = svc.MemberHistory(ctx, "no-such-member", 10)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
