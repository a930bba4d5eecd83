package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================
// In-Memory Repository Implementations (Fallback)
// ============================================

// In-memory Member Repository
type inMemoryMemberRepository struct {
	mu      sync.RWMutex
	members map[string]*Member
}

func newInMemoryMemberRepository() *inMemoryMemberRepository {
	return &inMemoryMemberRepository{members: make(map[string]*Member)}
}

func (r *inMemoryMemberRepository) Create(ctx context.Context, member *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.ID = uuid.New().String()
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()
	r.members[member.ID] = member
	return nil
}

func (r *inMemoryMemberRepository) FindByID(ctx context.Context, id string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[id], nil
}

func (r *inMemoryMemberRepository) FindByEmail(ctx context.Context, email string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMemberRepository) FindByAccessCard(ctx context.Context, cardID string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.AccessCardID == cardID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMemberRepository) FindAll(ctx context.Context, status string) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*Member
	for _, m := range r.members {
		if status == "" || m.MembershipStatus == status {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].CreatedAt.After(members[j].CreatedAt)
	})
	return members, nil
}

func (r *inMemoryMemberRepository) Update(ctx context.Context, member *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.UpdatedAt = time.Now()
	r.members[member.ID] = member
	return nil
}

func (r *inMemoryMemberRepository) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.members {
		if m.MembershipStatus == "active" && m.ExpiryDate != nil && m.ExpiryDate.Before(now) {
			m.MembershipStatus = "expired"
			m.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (r *inMemoryMemberRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, id)
	return nil
}

// In-memory Workspace Repository
type inMemoryWorkspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

func newInMemoryWorkspaceRepository() *inMemoryWorkspaceRepository {
	return &inMemoryWorkspaceRepository{workspaces: make(map[string]*Workspace)}
}

func (r *inMemoryWorkspaceRepository) Create(ctx context.Context, workspace *Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	workspace.ID = uuid.New().String()
	workspace.CreatedAt = time.Now()
	workspace.UpdatedAt = time.Now()
	r.workspaces[workspace.ID] = workspace
	return nil
}

func (r *inMemoryWorkspaceRepository) FindByID(ctx context.Context, id string) (*Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workspaces[id], nil
}

func (r *inMemoryWorkspaceRepository) FindAll(ctx context.Context, workspaceType string) ([]*Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var workspaces []*Workspace
	for _, w := range r.workspaces {
		if workspaceType == "" || w.Type == workspaceType {
			workspaces = append(workspaces, w)
		}
	}
	sort.Slice(workspaces, func(i, j int) bool {
		if workspaces[i].Floor != workspaces[j].Floor {
			return workspaces[i].Floor < workspaces[j].Floor
		}
		return workspaces[i].Name < workspaces[j].Name
	})
	return workspaces, nil
}

func (r *inMemoryWorkspaceRepository) Update(ctx context.Context, workspace *Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	workspace.UpdatedAt = time.Now()
	r.workspaces[workspace.ID] = workspace
	return nil
}

func (r *inMemoryWorkspaceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, id)
	return nil
}

// In-memory Booking Repository
type inMemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

func newInMemoryBookingRepository() *inMemoryBookingRepository {
	return &inMemoryBookingRepository{bookings: make(map[string]*Booking)}
}

func isLiveStatus(status string) bool {
	return status == "confirmed" || status == "checked-in"
}

func windowsOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

func (r *inMemoryBookingRepository) Create(ctx context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.WorkspaceID == booking.WorkspaceID && isLiveStatus(b.Status) &&
			windowsOverlap(b.StartTime, b.EndTime, booking.StartTime, booking.EndTime) {
			return ErrOverlap
		}
	}
	booking.ID = uuid.New().String()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	r.bookings[booking.ID] = booking
	return nil
}

func (r *inMemoryBookingRepository) FindByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bookings[id], nil
}

func (r *inMemoryBookingRepository) FindByMemberID(ctx context.Context, memberID string) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bookings []*Booking
	for _, b := range r.bookings {
		if b.MemberID == memberID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartTime.After(bookings[j].StartTime)
	})
	return bookings, nil
}

func (r *inMemoryBookingRepository) FindByWorkspaceID(ctx context.Context, workspaceID string, from, to time.Time) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bookings []*Booking
	for _, b := range r.bookings {
		if b.WorkspaceID == workspaceID && windowsOverlap(b.StartTime, b.EndTime, from, to) {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartTime.Before(bookings[j].StartTime)
	})
	return bookings, nil
}

func (r *inMemoryBookingRepository) FindOverlapping(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bookings []*Booking
	for _, b := range r.bookings {
		if b.ID == excludeID {
			continue
		}
		if b.WorkspaceID == workspaceID && isLiveStatus(b.Status) &&
			windowsOverlap(b.StartTime, b.EndTime, start, end) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (r *inMemoryBookingRepository) FindActiveForMember(ctx context.Context, memberID, workspaceID string, at time.Time) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.MemberID == memberID && b.WorkspaceID == workspaceID && isLiveStatus(b.Status) &&
			!at.Before(b.StartTime) && !at.After(b.EndTime) {
			return b, nil
		}
	}
	return nil, nil
}

func (r *inMemoryBookingRepository) FindNoShowCandidates(ctx context.Context, startedBefore time.Time) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bookings []*Booking
	for _, b := range r.bookings {
		if b.Status == "confirmed" && b.StartTime.Before(startedBefore) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (r *inMemoryBookingRepository) Update(ctx context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.UpdatedAt = time.Now()
	r.bookings[booking.ID] = booking
	return nil
}

// In-memory Payment Repository
type inMemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*Payment
}

func newInMemoryPaymentRepository() *inMemoryPaymentRepository {
	return &inMemoryPaymentRepository{payments: make(map[string]*Payment)}
}

func (r *inMemoryPaymentRepository) Create(ctx context.Context, payment *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = uuid.New().String()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()
	r.payments[payment.ID] = payment
	return nil
}

func (r *inMemoryPaymentRepository) FindByID(ctx context.Context, id string) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.payments[id], nil
}

func (r *inMemoryPaymentRepository) FindByMemberID(ctx context.Context, memberID string) ([]*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var payments []*Payment
	for _, p := range r.payments {
		if p.MemberID == memberID {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

func (r *inMemoryPaymentRepository) FindByBookingID(ctx context.Context, bookingID string) ([]*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var payments []*Payment
	for _, p := range r.payments {
		if p.BookingID != nil && *p.BookingID == bookingID {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}

func (r *inMemoryPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.TransactionID != nil && *p.TransactionID == transactionID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepository) Update(ctx context.Context, payment *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.UpdatedAt = time.Now()
	r.payments[payment.ID] = payment
	return nil
}

func (r *inMemoryPaymentRepository) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := decimal.Zero
	for _, p := range r.payments {
		if p.PaidAt == nil || p.PaidAt.Before(from) || !p.PaidAt.Before(to) {
			continue
		}
		if p.Status != "completed" && p.Status != "refunded" {
			continue
		}
		net := p.Amount
		if p.RefundedAmount != nil {
			net = net.Sub(*p.RefundedAmount)
		}
		total = total.Add(net)
	}
	return total, nil
}

func (r *inMemoryPaymentRepository) RevenueByType(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byType := make(map[string]decimal.Decimal)
	for _, p := range r.payments {
		if p.PaidAt == nil || p.PaidAt.Before(from) || !p.PaidAt.Before(to) {
			continue
		}
		if p.Status != "completed" && p.Status != "refunded" {
			continue
		}
		net := p.Amount
		if p.RefundedAmount != nil {
			net = net.Sub(*p.RefundedAmount)
		}
		byType[p.PaymentType] = byType[p.PaymentType].Add(net)
	}
	return byType, nil
}

// In-memory Access Log Repository
type inMemoryAccessLogRepository struct {
	mu   sync.RWMutex
	logs map[string]*AccessLog
}

func newInMemoryAccessLogRepository() *inMemoryAccessLogRepository {
	return &inMemoryAccessLogRepository{logs: make(map[string]*AccessLog)}
}

func (r *inMemoryAccessLogRepository) Create(ctx context.Context, log *AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = uuid.New().String()
	log.CreatedAt = time.Now()
	r.logs[log.ID] = log
	return nil
}

func (r *inMemoryAccessLogRepository) FindByID(ctx context.Context, id string) (*AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logs[id], nil
}

func (r *inMemoryAccessLogRepository) FindByMemberID(ctx context.Context, memberID string, limit int) ([]*AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	var logs []*AccessLog
	for _, l := range r.logs {
		if l.MemberID != nil && *l.MemberID == memberID {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].EntryTime.After(logs[j].EntryTime)
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (r *inMemoryAccessLogRepository) FindOpenByMember(ctx context.Context, memberID string) (*AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *AccessLog
	for _, l := range r.logs {
		if l.MemberID == nil || *l.MemberID != memberID || !l.Granted || l.ExitTime != nil {
			continue
		}
		if latest == nil || l.EntryTime.After(latest.EntryTime) {
			latest = l
		}
	}
	return latest, nil
}

func (r *inMemoryAccessLogRepository) FindOpenByWorkspace(ctx context.Context, workspaceID string) ([]*AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var logs []*AccessLog
	for _, l := range r.logs {
		if l.WorkspaceID != nil && *l.WorkspaceID == workspaceID && l.Granted && l.ExitTime == nil {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].EntryTime.Before(logs[j].EntryTime)
	})
	return logs, nil
}

func (r *inMemoryAccessLogRepository) FindOpen(ctx context.Context) ([]*AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var logs []*AccessLog
	for _, l := range r.logs {
		if l.Granted && l.ExitTime == nil {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].EntryTime.After(logs[j].EntryTime)
	})
	return logs, nil
}

func (r *inMemoryAccessLogRepository) Update(ctx context.Context, log *AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.ID] = log
	return nil
}

func (r *inMemoryAccessLogRepository) Stats(ctx context.Context, from, to time.Time) (*AccessStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &AccessStats{PeakHour: -1}
	uniqueMembers := make(map[string]struct{})
	byHour := make(map[int]int)
	for _, l := range r.logs {
		if l.EntryTime.Before(from) || !l.EntryTime.Before(to) {
			continue
		}
		stats.TotalEntries++
		if l.Granted {
			stats.Granted++
			byHour[l.EntryTime.Hour()]++
		} else {
			stats.Denied++
		}
		if l.MemberID != nil {
			uniqueMembers[*l.MemberID] = struct{}{}
		}
	}
	stats.UniqueMembers = len(uniqueMembers)
	best := 0
	for hour, count := range byHour {
		if count > best || (count == best && stats.PeakHour >= 0 && hour < stats.PeakHour) {
			best = count
			stats.PeakHour = hour
		}
	}
	return stats, nil
}

// In-memory Metric Repository
type inMemoryMetricRepository struct {
	mu      sync.RWMutex
	metrics []*InfrastructureMetric
}

func newInMemoryMetricRepository() *inMemoryMetricRepository {
	return &inMemoryMetricRepository{}
}

func (r *inMemoryMetricRepository) Insert(ctx context.Context, metric *InfrastructureMetric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	metric.ID = uuid.New().String()
	if metric.RecordedAt.IsZero() {
		metric.RecordedAt = time.Now()
	}
	r.metrics = append(r.metrics, metric)
	return nil
}

func (r *inMemoryMetricRepository) FindLatest(ctx context.Context, metricType string) (*InfrastructureMetric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *InfrastructureMetric
	for _, m := range r.metrics {
		if m.MetricType != metricType {
			continue
		}
		if latest == nil || m.RecordedAt.After(latest.RecordedAt) {
			latest = m
		}
	}
	return latest, nil
}

func (r *inMemoryMetricRepository) FindRange(ctx context.Context, metricType string, from, to time.Time) ([]*InfrastructureMetric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var metrics []*InfrastructureMetric
	for _, m := range r.metrics {
		if m.MetricType == metricType && !m.RecordedAt.Before(from) && m.RecordedAt.Before(to) {
			metrics = append(metrics, m)
		}
	}
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].RecordedAt.Before(metrics[j].RecordedAt)
	})
	return metrics, nil
}

func (r *inMemoryMetricRepository) UptimePercent(ctx context.Context, metricType string, from, to time.Time) (float64, error) {
	metrics, err := r.FindRange(ctx, metricType, from, to)
	if err != nil {
		return 0, err
	}
	if len(metrics) == 0 {
		return 0, nil
	}
	up := 0
	for _, m := range metrics {
		switch metricType {
		case "power":
			if m.PowerStatus != nil && *m.PowerStatus != "offline" {
				up++
			}
		case "internet":
			if m.InternetStatus != nil && *m.InternetStatus != "offline" {
				up++
			}
		}
	}
	return float64(up) / float64(len(metrics)) * 100, nil
}

func (r *inMemoryMetricRepository) CountFailovers(ctx context.Context, from, to time.Time) (int, error) {
	metrics, err := r.FindRange(ctx, "power", from, to)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := 1; i < len(metrics); i++ {
		prev, cur := metrics[i-1].PowerSource, metrics[i].PowerSource
		if prev != nil && cur != nil && *prev == "grid" && *cur != "grid" {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryMetricRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*InfrastructureMetric
	var removed int64
	for _, m := range r.metrics {
		if m.RecordedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	r.metrics = kept
	return removed, nil
}
