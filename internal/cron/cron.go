package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sourcehub/hub-backend/internal/service"
)

const metricRetention = 90 * 24 * time.Hour

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	services *service.Services
}

// NewScheduler creates a new scheduler
func NewScheduler(services *service.Services) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		services: services,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every 15 minutes - flag no-show bookings
	s.cron.AddFunc("*/15 * * * *", func() {
		log.Println("[Cron] Running no-show sweep...")
		s.sweepNoShows()
	})

	// Run every hour - expire overdue memberships
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running membership expiry check...")
		s.expireMemberships()
	})

	// Run every day at 3 AM - prune old infrastructure metrics
	s.cron.AddFunc("0 3 * * *", func() {
		log.Println("[Cron] Running metric cleanup...")
		s.cleanupMetrics()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

func (s *Scheduler) sweepNoShows() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.services.Booking.MarkNoShows(ctx)
	if err != nil {
		log.Printf("[Cron] No-show sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[Cron] Marked %d bookings as no-show", count)
	}
}

func (s *Scheduler) expireMemberships() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.services.Membership.ExpireOverdue(ctx)
	if err != nil {
		log.Printf("[Cron] Membership expiry check failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[Cron] Expired %d memberships", count)
	}
}

func (s *Scheduler) cleanupMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	removed, err := s.services.Infrastructure.Cleanup(ctx, metricRetention)
	if err != nil {
		log.Printf("[Cron] Metric cleanup failed: %v", err)
		return
	}
	log.Printf("[Cron] Removed %d old metric readings", removed)
}
