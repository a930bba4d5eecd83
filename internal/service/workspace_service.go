package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

// ============================================
// Workspace Service
// ============================================

type CreateWorkspaceInput struct {
	Name        string
	Type        string
	Floor       int
	Capacity    int
	HourlyRate  decimal.Decimal
	DailyRate   decimal.Decimal
	MonthlyRate decimal.Decimal
	Amenities   []string
	Equipment   []string
	IsAvailable *bool
}

type UpdateWorkspaceInput struct {
	Name        *string
	Floor       *int
	Capacity    *int
	HourlyRate  *decimal.Decimal
	DailyRate   *decimal.Decimal
	MonthlyRate *decimal.Decimal
	Amenities   []string
	Equipment   []string
	IsAvailable *bool
}

type WorkspaceService interface {
	Create(ctx context.Context, input CreateWorkspaceInput) (*repository.Workspace, error)
	GetByID(ctx context.Context, id string) (*repository.Workspace, error)
	List(ctx context.Context, workspaceType string) ([]*repository.Workspace, error)
	Update(ctx context.Context, id string, input UpdateWorkspaceInput) (*repository.Workspace, error)
	SetMaintenanceStatus(ctx context.Context, id, status string) (*repository.Workspace, error)
	Schedule(ctx context.Context, id string, from, to time.Time) ([]*repository.Booking, error)
	Delete(ctx context.Context, id string) error
}

type workspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	bookingRepo   repository.BookingRepository
}

func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, bookingRepo repository.BookingRepository) WorkspaceService {
	return &workspaceService{workspaceRepo: workspaceRepo, bookingRepo: bookingRepo}
}

func (s *workspaceService) Create(ctx context.Context, input CreateWorkspaceInput) (*repository.Workspace, error) {
	if input.Name == "" || !types.IsValid(input.Type, types.ValidWorkspaceTypes) {
		return nil, ErrInvalidInput
	}
	if input.Capacity <= 0 {
		input.Capacity = 1
	}

	workspace := &repository.Workspace{
		Name:              input.Name,
		Type:              input.Type,
		Floor:             input.Floor,
		Capacity:          input.Capacity,
		HourlyRate:        input.HourlyRate,
		DailyRate:         input.DailyRate,
		MonthlyRate:       input.MonthlyRate,
		Amenities:         input.Amenities,
		Equipment:         input.Equipment,
		IsAvailable:       true,
		MaintenanceStatus: types.MaintenanceOperational,
	}
	if input.IsAvailable != nil {
		workspace.IsAvailable = *input.IsAvailable
	}
	if workspace.Amenities == nil {
		workspace.Amenities = []string{}
	}
	if workspace.Equipment == nil {
		workspace.Equipment = []string{}
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *workspaceService) GetByID(ctx context.Context, id string) (*repository.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}
	return workspace, nil
}

func (s *workspaceService) List(ctx context.Context, workspaceType string) ([]*repository.Workspace, error) {
	return s.workspaceRepo.FindAll(ctx, workspaceType)
}

func (s *workspaceService) Update(ctx context.Context, id string, input UpdateWorkspaceInput) (*repository.Workspace, error) {
	workspace, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		workspace.Name = *input.Name
	}
	if input.Floor != nil {
		workspace.Floor = *input.Floor
	}
	if input.Capacity != nil {
		workspace.Capacity = *input.Capacity
	}
	if input.HourlyRate != nil {
		workspace.HourlyRate = *input.HourlyRate
	}
	if input.DailyRate != nil {
		workspace.DailyRate = *input.DailyRate
	}
	if input.MonthlyRate != nil {
		workspace.MonthlyRate = *input.MonthlyRate
	}
	if input.Amenities != nil {
		workspace.Amenities = input.Amenities
	}
	if input.Equipment != nil {
		workspace.Equipment = input.Equipment
	}
	if input.IsAvailable != nil {
		workspace.IsAvailable = *input.IsAvailable
	}

	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *workspaceService) SetMaintenanceStatus(ctx context.Context, id, status string) (*repository.Workspace, error) {
	valid := []string{types.MaintenanceOperational, types.MaintenanceInProgress, types.MaintenanceOutOfService}
	if !types.IsValid(status, valid) {
		return nil, ErrInvalidInput
	}

	workspace, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	workspace.MaintenanceStatus = status
	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *workspaceService) Schedule(ctx context.Context, id string, from, to time.Time) ([]*repository.Booking, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.bookingRepo.FindByWorkspaceID(ctx, id, from, to)
}

func (s *workspaceService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.workspaceRepo.Delete(ctx, id)
}
