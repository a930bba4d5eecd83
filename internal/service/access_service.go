package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

// ============================================
// Access Service
// ============================================

type AccessAttempt struct {
	// Identifier is the access card ID for id-card attempts, otherwise
	// the member ID.
	Identifier   string
	AccessMethod string
	WorkspaceID  string
}

type AccessResult struct {
	Granted bool
	Reason  string
	Member  *repository.Member
	Log     *repository.AccessLog
}

type Occupant struct {
	Member *repository.Member
	Log    *repository.AccessLog
}

type AccessService interface {
	VerifyAccess(ctx context.Context, attempt AccessAttempt) (*AccessResult, error)
	LogExit(ctx context.Context, accessLogID string) (*repository.AccessLog, error)
	MemberHistory(ctx context.Context, memberID string, limit int) ([]*repository.AccessLog, error)
	CurrentOccupants(ctx context.Context, workspaceID string) ([]*Occupant, error)
	Stats(ctx context.Context, from, to time.Time) (*repository.AccessStats, error)
}

type accessService struct {
	memberRepo    repository.MemberRepository
	workspaceRepo repository.WorkspaceRepository
	bookingRepo   repository.BookingRepository
	accessLogRepo repository.AccessLogRepository
}

func NewAccessService(
	memberRepo repository.MemberRepository,
	workspaceRepo repository.WorkspaceRepository,
	bookingRepo repository.BookingRepository,
	accessLogRepo repository.AccessLogRepository,
) AccessService {
	return &accessService{
		memberRepo:    memberRepo,
		workspaceRepo: workspaceRepo,
		bookingRepo:   bookingRepo,
		accessLogRepo: accessLogRepo,
	}
}

// VerifyAccess runs the entry decision chain: member lookup, membership
// status, expiry, then workspace booking when a workspace is targeted.
// Every attempt is logged, granted or not.
func (s *accessService) VerifyAccess(ctx context.Context, attempt AccessAttempt) (*AccessResult, error) {
	if !types.IsValid(attempt.AccessMethod, types.ValidAccessMethods) {
		return nil, ErrInvalidInput
	}

	var member *repository.Member
	var err error
	if attempt.AccessMethod == types.AccessIDCard {
		member, err = s.memberRepo.FindByAccessCard(ctx, attempt.Identifier)
	} else {
		member, err = s.memberRepo.FindByID(ctx, attempt.Identifier)
	}
	if err != nil {
		return nil, err
	}

	if member == nil {
		return s.deny(ctx, nil, attempt, "Member not found")
	}

	if member.MembershipStatus != types.MembershipActive {
		return s.deny(ctx, member, attempt, fmt.Sprintf("Membership is %s", member.MembershipStatus))
	}

	if member.ExpiryDate != nil && member.ExpiryDate.Before(time.Now()) {
		return s.deny(ctx, member, attempt, "Membership has expired")
	}

	if attempt.WorkspaceID != "" {
		booking, err := s.bookingRepo.FindActiveForMember(ctx, member.ID, attempt.WorkspaceID, time.Now())
		if err != nil {
			return nil, err
		}
		if booking == nil {
			return s.deny(ctx, member, attempt, "No active booking for this workspace")
		}
	}

	log, err := s.logAttempt(ctx, member, attempt, true, nil)
	if err != nil {
		return nil, err
	}
	return &AccessResult{Granted: true, Reason: "Access granted", Member: member, Log: log}, nil
}

func (s *accessService) LogExit(ctx context.Context, accessLogID string) (*repository.AccessLog, error) {
	log, err := s.accessLogRepo.FindByID(ctx, accessLogID)
	if err != nil {
		return nil, err
	}
	if log == nil || log.ExitTime != nil {
		return nil, ErrNotFound
	}

	now := time.Now()
	log.ExitTime = &now
	if err := s.accessLogRepo.Update(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *accessService) MemberHistory(ctx context.Context, memberID string, limit int) ([]*repository.AccessLog, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return s.accessLogRepo.FindByMemberID(ctx, memberID, limit)
}

// CurrentOccupants lists members inside the facility, or inside one
// workspace when workspaceID is given.
func (s *accessService) CurrentOccupants(ctx context.Context, workspaceID string) ([]*Occupant, error) {
	var logs []*repository.AccessLog
	var err error
	if workspaceID != "" {
		logs, err = s.accessLogRepo.FindOpenByWorkspace(ctx, workspaceID)
	} else {
		logs, err = s.accessLogRepo.FindOpen(ctx)
	}
	if err != nil {
		return nil, err
	}

	occupants := make([]*Occupant, 0, len(logs))
	for _, log := range logs {
		if log.MemberID == nil {
			continue
		}
		member, err := s.memberRepo.FindByID(ctx, *log.MemberID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			continue
		}
		occupants = append(occupants, &Occupant{Member: member, Log: log})
	}
	return occupants, nil
}

func (s *accessService) Stats(ctx context.Context, from, to time.Time) (*repository.AccessStats, error) {
	return s.accessLogRepo.Stats(ctx, from, to)
}

func (s *accessService) deny(ctx context.Context, member *repository.Member, attempt AccessAttempt, reason string) (*AccessResult, error) {
	log, err := s.logAttempt(ctx, member, attempt, false, &reason)
	if err != nil {
		return nil, err
	}
	return &AccessResult{Granted: false, Reason: reason, Member: member, Log: log}, nil
}

func (s *accessService) logAttempt(ctx context.Context, member *repository.Member, attempt AccessAttempt, granted bool, reason *string) (*repository.AccessLog, error) {
	log := &repository.AccessLog{
		AccessMethod: attempt.AccessMethod,
		Granted:      granted,
		DenialReason: reason,
		EntryTime:    time.Now(),
	}
	if member != nil {
		log.MemberID = &member.ID
	}
	if attempt.WorkspaceID != "" {
		log.WorkspaceID = &attempt.WorkspaceID
	}
	if err := s.accessLogRepo.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}
