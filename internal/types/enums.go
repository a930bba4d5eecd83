package types

// Membership tiers
const (
	TierTrial      = "trial"
	TierBasic      = "basic"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

// Membership status values
const (
	MembershipActive    = "active"
	MembershipSuspended = "suspended"
	MembershipExpired   = "expired"
)

// Workspace types
const (
	WorkspaceDesk          = "desk"
	WorkspaceMeetingRoom   = "meeting-room"
	WorkspacePrivateOffice = "private-office"
	WorkspaceStudio        = "studio"
	WorkspaceCollaborative = "collaborative-area"
)

// Workspace maintenance status
const (
	MaintenanceOperational  = "operational"
	MaintenanceInProgress   = "maintenance"
	MaintenanceOutOfService = "out-of-service"
)

// Booking types
const (
	BookingHourly  = "hourly"
	BookingDaily   = "daily"
	BookingMonthly = "monthly"
)

// Booking status values
const (
	BookingConfirmed = "confirmed"
	BookingCheckedIn = "checked-in"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingNoShow    = "no-show"
)

// Booking payment status values
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Payment record status values
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment methods
const (
	MethodMobileMoney  = "mobile-money"
	MethodCard         = "card"
	MethodBankTransfer = "bank-transfer"
	MethodCash         = "cash"
)

// Payment types
const (
	PaymentTypeMembership = "membership"
	PaymentTypeBooking    = "booking"
	PaymentTypeWorkshop   = "workshop"
	PaymentTypeEquipment  = "equipment"
)

// Access methods
const (
	AccessIDCard    = "id-card"
	AccessBiometric = "biometric"
	AccessMobileApp = "mobile-app"
)

// Infrastructure metric types
const (
	MetricPower         = "power"
	MetricInternet      = "internet"
	MetricEnvironmental = "environmental"
)

// Power sources and status
const (
	PowerGrid      = "grid"
	PowerGenerator = "generator"
	PowerBattery   = "battery"

	PowerOnline    = "online"
	PowerOffline   = "offline"
	PowerSwitching = "switching"
)

// Internet status
const (
	InternetOnline   = "online"
	InternetOffline  = "offline"
	InternetDegraded = "degraded"
)

// Valid values for request validation
var ValidMembershipTiers = []string{TierTrial, TierBasic, TierPro, TierEnterprise}

var ValidWorkspaceTypes = []string{
	WorkspaceDesk, WorkspaceMeetingRoom, WorkspacePrivateOffice,
	WorkspaceStudio, WorkspaceCollaborative,
}

var ValidBookingTypes = []string{BookingHourly, BookingDaily, BookingMonthly}

var ValidAccessMethods = []string{AccessIDCard, AccessBiometric, AccessMobileApp}

var ValidPaymentMethods = []string{MethodMobileMoney, MethodCard, MethodBankTransfer, MethodCash}

var ValidBookingPaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentRefunded}

func IsValid(value string, valid []string) bool {
	for _, v := range valid {
		if v == value {
			return true
		}
	}
	return false
}
