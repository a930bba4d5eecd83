package service

import (
	"context"
	"time"

	"github.com/sourcehub/hub-backend/internal/alert"
	"github.com/sourcehub/hub-backend/internal/db"
	"github.com/sourcehub/hub-backend/internal/events"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

const latestMetricCacheTTL = 5 * time.Minute

// ============================================
// Infrastructure Service
// ============================================

type FacilityStatus struct {
	Power         *repository.InfrastructureMetric `json:"power"`
	Internet      *repository.InfrastructureMetric `json:"internet"`
	Environmental *repository.InfrastructureMetric `json:"environmental"`
	ActiveAlerts  []alert.Alert                    `json:"activeAlerts"`
}

type InfrastructureService interface {
	RecordMetric(ctx context.Context, metric *repository.InfrastructureMetric) ([]alert.Alert, error)
	Latest(ctx context.Context, metricType string) (*repository.InfrastructureMetric, error)
	Range(ctx context.Context, metricType string, from, to time.Time) ([]*repository.InfrastructureMetric, error)
	Uptime(ctx context.Context, metricType string, from, to time.Time) (float64, error)
	Failovers(ctx context.Context, from, to time.Time) (int, error)
	Status(ctx context.Context) (*FacilityStatus, error)
	ActiveAlerts() []alert.Alert
	AlertHistory(limit int) []alert.Alert
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

type infrastructureService struct {
	metricRepo repository.MetricRepository
	alerts     *alert.Engine
	redis      *db.RedisDB
	publisher  *events.Publisher
}

func NewInfrastructureService(
	metricRepo repository.MetricRepository,
	alerts *alert.Engine,
	redis *db.RedisDB,
	publisher *events.Publisher,
) InfrastructureService {
	return &infrastructureService{
		metricRepo: metricRepo,
		alerts:     alerts,
		redis:      redis,
		publisher:  publisher,
	}
}

func (s *infrastructureService) RecordMetric(ctx context.Context, metric *repository.InfrastructureMetric) ([]alert.Alert, error) {
	valid := []string{types.MetricPower, types.MetricInternet, types.MetricEnvironmental}
	if !types.IsValid(metric.MetricType, valid) {
		return nil, ErrInvalidInput
	}
	if metric.RecordedAt.IsZero() {
		metric.RecordedAt = time.Now()
	}

	if err := s.metricRepo.Insert(ctx, metric); err != nil {
		return nil, err
	}

	if s.redis != nil {
		_ = s.redis.SetCache(ctx, "metric:latest:"+metric.MetricType, metric, latestMetricCacheTTL)
	}

	raised := s.alerts.Evaluate(metric)
	for _, a := range raised {
		s.publisher.Publish(ctx, events.AlertRaised, a)
	}
	return raised, nil
}

func (s *infrastructureService) Latest(ctx context.Context, metricType string) (*repository.InfrastructureMetric, error) {
	if s.redis != nil {
		var cached repository.InfrastructureMetric
		if err := s.redis.GetCache(ctx, "metric:latest:"+metricType, &cached); err == nil {
			return &cached, nil
		}
	}
	return s.metricRepo.FindLatest(ctx, metricType)
}

func (s *infrastructureService) Range(ctx context.Context, metricType string, from, to time.Time) ([]*repository.InfrastructureMetric, error) {
	return s.metricRepo.FindRange(ctx, metricType, from, to)
}

func (s *infrastructureService) Uptime(ctx context.Context, metricType string, from, to time.Time) (float64, error) {
	return s.metricRepo.UptimePercent(ctx, metricType, from, to)
}

func (s *infrastructureService) Failovers(ctx context.Context, from, to time.Time) (int, error) {
	return s.metricRepo.CountFailovers(ctx, from, to)
}

func (s *infrastructureService) Status(ctx context.Context) (*FacilityStatus, error) {
	power, err := s.Latest(ctx, types.MetricPower)
	if err != nil {
		return nil, err
	}
	internet, err := s.Latest(ctx, types.MetricInternet)
	if err != nil {
		return nil, err
	}
	environmental, err := s.Latest(ctx, types.MetricEnvironmental)
	if err != nil {
		return nil, err
	}

	return &FacilityStatus{
		Power:         power,
		Internet:      internet,
		Environmental: environmental,
		ActiveAlerts:  s.alerts.Active(),
	}, nil
}

func (s *infrastructureService) ActiveAlerts() []alert.Alert {
	return s.alerts.Active()
}

func (s *infrastructureService) AlertHistory(limit int) []alert.Alert {
	return s.alerts.History(limit)
}

func (s *infrastructureService) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.metricRepo.DeleteOlderThan(ctx, time.Now().Add(-olderThan))
}
