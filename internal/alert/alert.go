// Package alert evaluates infrastructure readings against operational
// thresholds, tracks active alerts, and notifies subscribers on raise
// and resolve.
package alert

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sourcehub/hub-backend/internal/repository"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert codes, one active alert per code at a time.
const (
	CodePowerOffline      = "power-offline"
	CodePowerSwitching    = "power-switching"
	CodeBatteryLow        = "battery-low"
	CodeInternetOffline   = "internet-offline"
	CodeInternetDegraded  = "internet-degraded"
	CodeDownloadSlow      = "download-slow"
	CodeUploadSlow        = "upload-slow"
	CodeTemperatureHigh   = "temperature-high"
	CodeTemperatureLow    = "temperature-low"
	CodeHumidityHigh      = "humidity-high"
)

const (
	minDownloadMbps = 50.0
	minUploadMbps   = 25.0
	maxTemperatureC = 30.0
	minTemperatureC = 15.0
	maxHumidityPct  = 70.0
	minBatteryPct   = 20.0
)

type Alert struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	RaisedAt   time.Time  `json:"raisedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

func (a Alert) Resolved() bool { return a.ResolvedAt != nil }

type Subscriber func(Alert)

type Engine struct {
	mu      sync.RWMutex
	active  map[string]*Alert
	history []Alert
	subs    map[int]Subscriber
	nextSub int
}

func NewEngine() *Engine {
	return &Engine{
		active: make(map[string]*Alert),
		subs:   make(map[int]Subscriber),
	}
}

// Subscribe registers a callback for raised and resolved alerts. The
// returned function removes the subscription.
func (e *Engine) Subscribe(fn Subscriber) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// Evaluate applies thresholds to a reading. Conditions that hold raise an
// alert if none is active for that code; conditions that no longer hold
// resolve the matching active alert. Returns alerts raised by this reading.
func (e *Engine) Evaluate(metric *repository.InfrastructureMetric) []Alert {
	type check struct {
		code     string
		severity string
		message  string
		firing   bool
	}
	var checks []check

	switch metric.MetricType {
	case "power":
		status := deref(metric.PowerStatus)
		checks = append(checks,
			check{CodePowerOffline, SeverityCritical, "Power supply is offline", status == "offline"},
			check{CodePowerSwitching, SeverityWarning, "Power is switching to backup source", status == "switching"},
		)
		if metric.BatteryLevel != nil {
			checks = append(checks, check{
				CodeBatteryLow, SeverityWarning,
				fmt.Sprintf("Battery level at %.1f%%", *metric.BatteryLevel),
				*metric.BatteryLevel < minBatteryPct,
			})
		}
	case "internet":
		status := deref(metric.InternetStatus)
		checks = append(checks,
			check{CodeInternetOffline, SeverityCritical, "Internet connection is offline", status == "offline"},
			check{CodeInternetDegraded, SeverityWarning, "Internet connection is degraded", status == "degraded"},
		)
		if metric.DownloadMbps != nil {
			checks = append(checks, check{
				CodeDownloadSlow, SeverityWarning,
				fmt.Sprintf("Download speed %.1f Mbps below %.0f Mbps", *metric.DownloadMbps, minDownloadMbps),
				status != "offline" && *metric.DownloadMbps < minDownloadMbps,
			})
		}
		if metric.UploadMbps != nil {
			checks = append(checks, check{
				CodeUploadSlow, SeverityWarning,
				fmt.Sprintf("Upload speed %.1f Mbps below %.0f Mbps", *metric.UploadMbps, minUploadMbps),
				status != "offline" && *metric.UploadMbps < minUploadMbps,
			})
		}
	case "environmental":
		if metric.TemperatureC != nil {
			t := *metric.TemperatureC
			checks = append(checks,
				check{CodeTemperatureHigh, SeverityWarning, fmt.Sprintf("Temperature %.1f°C above %.0f°C", t, maxTemperatureC), t > maxTemperatureC},
				check{CodeTemperatureLow, SeverityInfo, fmt.Sprintf("Temperature %.1f°C below %.0f°C", t, minTemperatureC), t < minTemperatureC},
			)
		}
		if metric.HumidityPct != nil {
			h := *metric.HumidityPct
			checks = append(checks, check{
				CodeHumidityHigh, SeverityWarning,
				fmt.Sprintf("Humidity %.1f%% above %.0f%%", h, maxHumidityPct),
				h > maxHumidityPct,
			})
		}
	}

	var raised []Alert
	var notify []Alert

	e.mu.Lock()
	for _, c := range checks {
		existing, isActive := e.active[c.code]
		if c.firing && !isActive {
			a := &Alert{
				ID:       uuid.New().String(),
				Code:     c.code,
				Severity: c.severity,
				Message:  c.message,
				RaisedAt: metric.RecordedAt,
			}
			e.active[c.code] = a
			raised = append(raised, *a)
			notify = append(notify, *a)
		}
		if !c.firing && isActive {
			now := metric.RecordedAt
			existing.ResolvedAt = &now
			e.history = append(e.history, *existing)
			delete(e.active, c.code)
			notify = append(notify, *existing)
		}
	}
	subs := make([]Subscriber, 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	for _, a := range notify {
		for _, fn := range subs {
			fn(a)
		}
	}
	return raised
}

// Active returns currently firing alerts, most severe first.
func (e *Engine) Active() []Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	alerts := make([]Alert, 0, len(e.active))
	for _, a := range e.active {
		alerts = append(alerts, *a)
	}
	sortBySeverity(alerts)
	return alerts
}

// History returns resolved alerts, newest first.
func (e *Engine) History(limit int) []Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := len(e.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Alert, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, e.history[i])
	}
	return out
}

func sortBySeverity(alerts []Alert) {
	rank := map[string]int{SeverityCritical: 0, SeverityWarning: 1, SeverityInfo: 2}
	for i := 1; i < len(alerts); i++ {
		for j := i; j > 0 && rank[alerts[j].Severity] < rank[alerts[j-1].Severity]; j-- {
			alerts[j], alerts[j-1] = alerts[j-1], alerts[j]
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
