// Package monitor generates synthetic infrastructure readings when no real
// sensor feed is wired up, so dashboards and alerting can be exercised in
// development.
package monitor

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/service"
	"github.com/sourcehub/hub-backend/internal/types"
)

type Simulator struct {
	infra    service.InfrastructureService
	interval time.Duration
	rng      *rand.Rand
}

func NewSimulator(infra service.InfrastructureService, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Simulator{
		infra:    infra,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run emits one reading of each metric type per interval until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	log.Printf("[Monitor] Simulator started, interval=%s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Monitor] Simulator stopped")
			return
		case <-ticker.C:
			s.emit(ctx)
		}
	}
}

func (s *Simulator) emit(ctx context.Context) {
	for _, metric := range []*repository.InfrastructureMetric{
		s.powerReading(),
		s.internetReading(),
		s.environmentalReading(),
	} {
		if _, err := s.infra.RecordMetric(ctx, metric); err != nil {
			log.Printf("[Monitor] Failed to record %s metric: %v", metric.MetricType, err)
		}
	}
}

func (s *Simulator) powerReading() *repository.InfrastructureMetric {
	source := types.PowerGrid
	status := types.PowerOnline
	roll := s.rng.Float64()
	switch {
	case roll < 0.02:
		source = types.PowerGenerator
		status = types.PowerSwitching
	case roll < 0.04:
		source = types.PowerBattery
	case roll < 0.05:
		status = types.PowerOffline
	}
	battery := 60 + s.rng.Float64()*40

	return &repository.InfrastructureMetric{
		MetricType:   types.MetricPower,
		PowerSource:  &source,
		PowerStatus:  &status,
		BatteryLevel: &battery,
		RecordedAt:   time.Now(),
	}
}

func (s *Simulator) internetReading() *repository.InfrastructureMetric {
	status := types.InternetOnline
	download := 80 + s.rng.Float64()*40
	upload := 40 + s.rng.Float64()*20
	latency := 10 + s.rng.Float64()*40

	roll := s.rng.Float64()
	switch {
	case roll < 0.03:
		status = types.InternetDegraded
		download = 20 + s.rng.Float64()*30
		upload = 10 + s.rng.Float64()*15
		latency = 100 + s.rng.Float64()*200
	case roll < 0.04:
		status = types.InternetOffline
		download, upload = 0, 0
		latency = 0
	}

	return &repository.InfrastructureMetric{
		MetricType:     types.MetricInternet,
		InternetStatus: &status,
		DownloadMbps:   &download,
		UploadMbps:     &upload,
		LatencyMs:      &latency,
		RecordedAt:     time.Now(),
	}
}

func (s *Simulator) environmentalReading() *repository.InfrastructureMetric {
	temperature := 20 + s.rng.Float64()*8
	humidity := 45 + s.rng.Float64()*20
	if s.rng.Float64() < 0.05 {
		temperature = 30 + s.rng.Float64()*5
		humidity = 70 + s.rng.Float64()*15
	}

	return &repository.InfrastructureMetric{
		MetricType:   types.MetricEnvironmental,
		TemperatureC: &temperature,
		HumidityPct:  &humidity,
		RecordedAt:   time.Now(),
	}
}
