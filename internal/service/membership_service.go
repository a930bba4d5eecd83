package service

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

const trialPeriodDays = 7
const renewalPeriodDays = 30

// TierPrice returns the monthly price of a membership tier.
func TierPrice(tier string) decimal.Decimal {
	switch tier {
	case types.TierBasic:
		return decimal.NewFromInt(50)
	case types.TierPro:
		return decimal.NewFromInt(100)
	case types.TierEnterprise:
		return decimal.NewFromInt(200)
	default:
		return decimal.Zero
	}
}

// TierRank orders tiers so paid changes can be restricted to upgrades.
func TierRank(tier string) int {
	switch tier {
	case types.TierBasic:
		return 1
	case types.TierPro:
		return 2
	case types.TierEnterprise:
		return 3
	default:
		return 0
	}
}

// ============================================
// Membership Service
// ============================================

type RegisterMemberInput struct {
	Email       string
	Password    string
	Name        string
	Phone       *string
	Tier        string
	Scholarship bool
	Bio         *string
	Skills      []string
	Interests   []string
	PortfolioURL *string
}

type UpdateProfileInput struct {
	Name              *string
	Phone             *string
	Bio               *string
	Skills            []string
	Interests         []string
	PortfolioURL      *string
	StorageUnitNumber *string
}

type MembershipService interface {
	Register(ctx context.Context, input RegisterMemberInput) (*repository.Member, error)
	GetByID(ctx context.Context, id string) (*repository.Member, error)
	List(ctx context.Context, status string) ([]*repository.Member, error)
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*repository.Member, error)
	Suspend(ctx context.Context, id string) (*repository.Member, error)
	Reactivate(ctx context.Context, id string) (*repository.Member, error)
	ReissueAccessCard(ctx context.Context, id string) (*repository.Member, error)
	ApplyScholarship(ctx context.Context, id string) (*repository.Member, error)
	RemoveScholarship(ctx context.Context, id string) (*repository.Member, error)
	ExpireOverdue(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type membershipService struct {
	memberRepo repository.MemberRepository
}

func NewMembershipService(memberRepo repository.MemberRepository) MembershipService {
	return &membershipService{memberRepo: memberRepo}
}

func (s *membershipService) Register(ctx context.Context, input RegisterMemberInput) (*repository.Member, error) {
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, ErrInvalidInput
	}
	tier := input.Tier
	if tier == "" {
		tier = types.TierTrial
	}
	if !types.IsValid(tier, types.ValidMembershipTiers) {
		return nil, ErrInvalidInput
	}

	existing, err := s.memberRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiry := now.AddDate(0, 0, trialPeriodDays)
	if tier != types.TierTrial {
		expiry = now.AddDate(0, 0, renewalPeriodDays)
	}

	member := &repository.Member{
		Email:            input.Email,
		PasswordHash:     string(hash),
		Name:             input.Name,
		Phone:            input.Phone,
		MembershipTier:   tier,
		MembershipStatus: types.MembershipActive,
		JoinDate:         now,
		ExpiryDate:       &expiry,
		AccessCardID:     generateAccessCard(),
		Scholarship:      input.Scholarship,
		Bio:              input.Bio,
		Skills:           input.Skills,
		Interests:        input.Interests,
		PortfolioURL:     input.PortfolioURL,
	}
	if member.Skills == nil {
		member.Skills = []string{}
	}
	if member.Interests == nil {
		member.Interests = []string{}
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *membershipService) GetByID(ctx context.Context, id string) (*repository.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (s *membershipService) List(ctx context.Context, status string) ([]*repository.Member, error) {
	return s.memberRepo.FindAll(ctx, status)
}

func (s *membershipService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*repository.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		member.Name = *input.Name
	}
	if input.Phone != nil {
		member.Phone = input.Phone
	}
	if input.Bio != nil {
		member.Bio = input.Bio
	}
	if input.Skills != nil {
		member.Skills = input.Skills
	}
	if input.Interests != nil {
		member.Interests = input.Interests
	}
	if input.PortfolioURL != nil {
		member.PortfolioURL = input.PortfolioURL
	}
	if input.StorageUnitNumber != nil {
		member.StorageUnitNumber = input.StorageUnitNumber
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *membershipService) Suspend(ctx context.Context, id string) (*repository.Member, error) {
	return s.setStatus(ctx, id, types.MembershipSuspended)
}

func (s *membershipService) Reactivate(ctx context.Context, id string) (*repository.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.ExpiryDate != nil && member.ExpiryDate.Before(time.Now()) {
		return nil, ErrMembershipExpired
	}
	member.MembershipStatus = types.MembershipActive
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *membershipService) ReissueAccessCard(ctx context.Context, id string) (*repository.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member.AccessCardID = generateAccessCard()
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *membershipService) ApplyScholarship(ctx context.Context, id string) (*repository.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.Scholarship {
		return nil, ErrScholarshipGranted
	}
	member.Scholarship = true
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *membershipService) RemoveScholarship(ctx context.Context, id string) (*repository.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member.Scholarship = false
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *membershipService) ExpireOverdue(ctx context.Context) (int, error) {
	return s.memberRepo.ExpireOverdue(ctx, time.Now())
}

func (s *membershipService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.memberRepo.Delete(ctx, id)
}

func (s *membershipService) setStatus(ctx context.Context, id, status string) (*repository.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member.MembershipStatus = status
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func generateAccessCard() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strconv.FormatInt(rand.Int63n(36*36*36*36*36*36), 36)
	return strings.ToUpper("SH-" + ts + "-" + suffix)
}
