package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcehub/hub-backend/internal/alert"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

func newInfraFixture(t *testing.T) (*repository.Repositories, InfrastructureService) {
	t.Helper()
	repos := repository.NewRepositories()
	svc := NewInfrastructureService(repos.MetricRepo, alert.NewEngine(), nil, nil)
	return repos, svc
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestRecordMetricRejectsUnknownType(t *testing.T) {
	_, svc := newInfraFixture(t)

	_, err := svc.RecordMetric(context.Background(), &repository.InfrastructureMetric{
		MetricType: "seismic",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordMetricRaisesAlerts(t *testing.T) {
	_, svc := newInfraFixture(t)
	ctx := context.Background()

	raised, err := svc.RecordMetric(ctx, &repository.InfrastructureMetric{
		MetricType:  types.MetricPower,
		PowerSource: strPtr(types.PowerGrid),
		PowerStatus: strPtr(types.PowerOffline),
	})
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, alert.CodePowerOffline, raised[0].Code)
	assert.Len(t, svc.ActiveAlerts(), 1)

	latest, err := svc.Latest(ctx, types.MetricPower)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, types.PowerOffline, *latest.PowerStatus)
	assert.False(t, latest.RecordedAt.IsZero())
}

func TestFacilityStatus(t *testing.T) {
	_, svc := newInfraFixture(t)
	ctx := context.Background()

	_, err := svc.RecordMetric(ctx, &repository.InfrastructureMetric{
		MetricType:  types.MetricPower,
		PowerSource: strPtr(types.PowerGrid),
		PowerStatus: strPtr(types.PowerOnline),
	})
	require.NoError(t, err)
	_, err = svc.RecordMetric(ctx, &repository.InfrastructureMetric{
		MetricType:     types.MetricInternet,
		InternetStatus: strPtr(types.InternetOffline),
	})
	require.NoError(t, err)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Power)
	require.NotNil(t, status.Internet)
	assert.Nil(t, status.Environmental)
	require.Len(t, status.ActiveAlerts, 1)
	assert.Equal(t, alert.CodeInternetOffline, status.ActiveAlerts[0].Code)
}

func TestUptimeAndFailovers(t *testing.T) {
	repos, svc := newInfraFixture(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	readings := []struct {
		source string
		status string
	}{
		{types.PowerGrid, types.PowerOnline},
		{types.PowerGrid, types.PowerOnline},
		{types.PowerGenerator, types.PowerSwitching},
		{types.PowerGrid, types.PowerOnline},
		{types.PowerBattery, types.PowerOffline},
	}
	for i, r := range readings {
		source, status := r.source, r.status
		require.NoError(t, repos.MetricRepo.Insert(ctx, &repository.InfrastructureMetric{
			MetricType:  types.MetricPower,
			PowerSource: &source,
			PowerStatus: &status,
			RecordedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	uptime, err := svc.Uptime(ctx, types.MetricPower, base.Add(-time.Minute), time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 80.0, uptime, 0.01)

	// Two grid-to-backup transitions.
	failovers, err := svc.Failovers(ctx, base.Add(-time.Minute), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, failovers)
}

func TestMetricCleanup(t *testing.T) {
	repos, svc := newInfraFixture(t)
	ctx := context.Background()

	old := time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, repos.MetricRepo.Insert(ctx, &repository.InfrastructureMetric{
		MetricType:   types.MetricEnvironmental,
		TemperatureC: floatPtr(22),
		RecordedAt:   old,
	}))
	require.NoError(t, repos.MetricRepo.Insert(ctx, &repository.InfrastructureMetric{
		MetricType:   types.MetricEnvironmental,
		TemperatureC: floatPtr(23),
		RecordedAt:   time.Now(),
	}))

	removed, err := svc.Cleanup(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := svc.Range(ctx, types.MetricEnvironmental, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
