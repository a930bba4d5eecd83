package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcehub/hub-backend/internal/repository"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func powerMetric(status string, battery *float64) *repository.InfrastructureMetric {
	return &repository.InfrastructureMetric{
		MetricType:   "power",
		PowerSource:  strPtr("grid"),
		PowerStatus:  strPtr(status),
		BatteryLevel: battery,
		RecordedAt:   time.Now(),
	}
}

func internetMetric(status string, download, upload float64) *repository.InfrastructureMetric {
	return &repository.InfrastructureMetric{
		MetricType:     "internet",
		InternetStatus: strPtr(status),
		DownloadMbps:   floatPtr(download),
		UploadMbps:     floatPtr(upload),
		RecordedAt:     time.Now(),
	}
}

func TestPowerOfflineRaisesAndResolves(t *testing.T) {
	e := NewEngine()

	raised := e.Evaluate(powerMetric("offline", nil))
	require.Len(t, raised, 1)
	assert.Equal(t, CodePowerOffline, raised[0].Code)
	assert.Equal(t, SeverityCritical, raised[0].Severity)

	// A repeat reading does not raise a duplicate.
	raised = e.Evaluate(powerMetric("offline", nil))
	assert.Empty(t, raised)
	assert.Len(t, e.Active(), 1)

	// Recovery resolves the alert and moves it to history.
	raised = e.Evaluate(powerMetric("online", nil))
	assert.Empty(t, raised)
	assert.Empty(t, e.Active())

	history := e.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, CodePowerOffline, history[0].Code)
	assert.True(t, history[0].Resolved())
}

func TestBatteryLowThreshold(t *testing.T) {
	e := NewEngine()

	raised := e.Evaluate(powerMetric("online", floatPtr(15)))
	require.Len(t, raised, 1)
	assert.Equal(t, CodeBatteryLow, raised[0].Code)
	assert.Equal(t, SeverityWarning, raised[0].Severity)

	e.Evaluate(powerMetric("online", floatPtr(80)))
	assert.Empty(t, e.Active())
}

func TestSlowSpeedsNotFlaggedWhenOffline(t *testing.T) {
	e := NewEngine()

	raised := e.Evaluate(internetMetric("offline", 0, 0))
	require.Len(t, raised, 1)
	assert.Equal(t, CodeInternetOffline, raised[0].Code)
}

func TestSlowSpeedThresholds(t *testing.T) {
	e := NewEngine()

	raised := e.Evaluate(internetMetric("online", 30, 10))
	require.Len(t, raised, 2)
	codes := []string{raised[0].Code, raised[1].Code}
	assert.Contains(t, codes, CodeDownloadSlow)
	assert.Contains(t, codes, CodeUploadSlow)
}

func TestEnvironmentalThresholds(t *testing.T) {
	e := NewEngine()

	raised := e.Evaluate(&repository.InfrastructureMetric{
		MetricType:   "environmental",
		TemperatureC: floatPtr(32),
		HumidityPct:  floatPtr(75),
		RecordedAt:   time.Now(),
	})
	require.Len(t, raised, 2)

	raised = e.Evaluate(&repository.InfrastructureMetric{
		MetricType:   "environmental",
		TemperatureC: floatPtr(12),
		HumidityPct:  floatPtr(50),
		RecordedAt:   time.Now(),
	})
	require.Len(t, raised, 1)
	assert.Equal(t, CodeTemperatureLow, raised[0].Code)
	assert.Equal(t, SeverityInfo, raised[0].Severity)
}

func TestActiveSortedBySeverity(t *testing.T) {
	e := NewEngine()

	e.Evaluate(internetMetric("online", 30, 60)) // warning: download slow
	e.Evaluate(powerMetric("offline", nil))      // critical

	active := e.Active()
	require.Len(t, active, 2)
	assert.Equal(t, SeverityCritical, active[0].Severity)
	assert.Equal(t, SeverityWarning, active[1].Severity)
}

func TestSubscriberNotifiedOnRaiseAndResolve(t *testing.T) {
	e := NewEngine()

	var events []Alert
	unsubscribe := e.Subscribe(func(a Alert) {
		events = append(events, a)
	})

	e.Evaluate(powerMetric("offline", nil))
	e.Evaluate(powerMetric("online", nil))

	require.Len(t, events, 2)
	assert.False(t, events[0].Resolved())
	assert.True(t, events[1].Resolved())

	unsubscribe()
	e.Evaluate(powerMetric("offline", nil))
	assert.Len(t, events, 2)
}
