// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	existing, _ := repos.MemberRepo.FindAll(ctx, "")
	if len(existing) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	now := time.Now()

	// ============================================
	// CREATE MEMBERS
	// ============================================

	// 1. AMARA - Pro member, long-standing
	amara := &repository.Member{
		Email:            "amara.diallo@sourcehub.dev",
		PasswordHash:     string(password),
		Name:             "Amara Diallo",
		MembershipTier:   types.TierPro,
		MembershipStatus: types.MembershipActive,
		JoinDate:         now.AddDate(0, -6, 0),
		ExpiryDate:       timePtr(now.AddDate(0, 1, 0)),
		AccessCardID:     "SH-SEED0001-AMARA",
		Bio:              stringPtr("Full-stack developer, community workshop host"),
		Skills:           []string{"go", "react", "postgres"},
		Interests:        []string{"open source", "mentoring"},
	}
	repos.MemberRepo.Create(ctx, amara)

	// 2. KOFI - Basic member on scholarship
	kofi := &repository.Member{
		Email:            "kofi.mensah@sourcehub.dev",
		PasswordHash:     string(password),
		Name:             "Kofi Mensah",
		MembershipTier:   types.TierBasic,
		MembershipStatus: types.MembershipActive,
		JoinDate:         now.AddDate(0, -2, 0),
		ExpiryDate:       timePtr(now.AddDate(0, 1, 0)),
		AccessCardID:     "SH-SEED0002-KOFI",
		Scholarship:      true,
		Skills:           []string{"python", "data analysis"},
	}
	repos.MemberRepo.Create(ctx, kofi)

	// 3. ZURI - Trial member, hasn't used the trial booking yet
	zuri := &repository.Member{
		Email:            "zuri.okafor@sourcehub.dev",
		PasswordHash:     string(password),
		Name:             "Zuri Okafor",
		MembershipTier:   types.TierTrial,
		MembershipStatus: types.MembershipActive,
		JoinDate:         now,
		ExpiryDate:       timePtr(now.AddDate(0, 0, 7)),
		AccessCardID:     "SH-SEED0003-ZURI",
		Interests:        []string{"design", "photography"},
	}
	repos.MemberRepo.Create(ctx, zuri)

	log.Printf("✅ Created 3 members: Amara (pro), Kofi (basic, scholarship), Zuri (trial)")

	// ============================================
	// CREATE WORKSPACES
	// ============================================

	hotDesks := &repository.Workspace{
		Name:              "Open Floor Hot Desks",
		Type:              types.WorkspaceDesk,
		Floor:             1,
		Capacity:          24,
		HourlyRate:        decimal.NewFromInt(5),
		DailyRate:         decimal.NewFromInt(30),
		MonthlyRate:       decimal.NewFromInt(400),
		Amenities:         []string{"wifi", "coffee", "standing desks"},
		IsAvailable:       true,
		MaintenanceStatus: types.MaintenanceOperational,
	}
	repos.WorkspaceRepo.Create(ctx, hotDesks)

	boardroom := &repository.Workspace{
		Name:              "Baobab Boardroom",
		Type:              types.WorkspaceMeetingRoom,
		Floor:             2,
		Capacity:          10,
		HourlyRate:        decimal.NewFromInt(25),
		DailyRate:         decimal.NewFromInt(150),
		MonthlyRate:       decimal.NewFromInt(2000),
		Amenities:         []string{"wifi", "whiteboard", "video conferencing"},
		Equipment:         []string{"projector", "conference phone"},
		IsAvailable:       true,
		MaintenanceStatus: types.MaintenanceOperational,
	}
	repos.WorkspaceRepo.Create(ctx, boardroom)

	studio := &repository.Workspace{
		Name:              "Recording Studio A",
		Type:              types.WorkspaceStudio,
		Floor:             3,
		Capacity:          4,
		HourlyRate:        decimal.NewFromInt(40),
		DailyRate:         decimal.NewFromInt(250),
		MonthlyRate:       decimal.NewFromInt(3500),
		Amenities:         []string{"soundproofing", "climate control"},
		Equipment:         []string{"mixing desk", "condenser mics", "monitors"},
		IsAvailable:       true,
		MaintenanceStatus: types.MaintenanceOperational,
	}
	repos.WorkspaceRepo.Create(ctx, studio)

	lounge := &repository.Workspace{
		Name:              "Community Lounge",
		Type:              types.WorkspaceCollaborative,
		Floor:             1,
		Capacity:          40,
		HourlyRate:        decimal.NewFromInt(2),
		DailyRate:         decimal.NewFromInt(10),
		MonthlyRate:       decimal.NewFromInt(120),
		Amenities:         []string{"wifi", "coffee", "lounge seating"},
		IsAvailable:       true,
		MaintenanceStatus: types.MaintenanceOperational,
	}
	repos.WorkspaceRepo.Create(ctx, lounge)

	log.Printf("✅ Created 4 workspaces: hot desks, boardroom, studio, lounge")

	// ============================================
	// CREATE A SAMPLE BOOKING
	// Amara has the boardroom booked and paid for tomorrow morning.
	// ============================================
	start := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	booking := &repository.Booking{
		MemberID:      amara.ID,
		WorkspaceID:   boardroom.ID,
		BookingType:   types.BookingHourly,
		StartTime:     start,
		EndTime:       start.Add(3 * time.Hour),
		Status:        types.BookingConfirmed,
		TotalPrice:    decimal.NewFromInt(75),
		PaymentStatus: types.PaymentPaid,
	}
	if err := repos.BookingRepo.Create(ctx, booking); err != nil {
		log.Printf("⚠️ Seed booking skipped: %v", err)
	} else {
		log.Printf("✅ Created sample booking: Amara in the boardroom tomorrow 09:00-12:00")
	}

	log.Println("[Seed] 🌱 Done")
}

func stringPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
