package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, phone, password string) (*domain.User, string, string, error) // user, access, refresh
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int32, name, email, phone string) (*domain.User, error)
}

type CarService interface {
	AddCar(ctx context.Context, actor domain.Actor, car *domain.Car) error
	GetCar(ctx context.Context, id int32) (*domain.Car, error)
	UpdateCar(ctx context.Context, actor domain.Actor, car *domain.Car) error
	DeleteCar(ctx context.Context, actor domain.Actor, id int32) error
	SetCarStatus(ctx context.Context, actor domain.Actor, id int32, status domain.CarStatus) error
	ListCars(ctx context.Context, filter domain.CarFilter, page, pageSize int32) ([]domain.Car, int32, error)
}

// CreateBookingInput carries everything a booking-creation request may supply.
type CreateBookingInput struct {
	CustomerID          int32
	CarID               int32
	StartDate           time.Time
	EndDate             time.Time
	PickupTime          string
	Purpose             string
	SpecialRequirements string
	PickupLocation      string
	ReturnLocation      string
	DriverLicense       string
}

// PickupDetails is recorded when a confirmed booking becomes active.
type PickupDetails struct {
	Mileage   int32
	FuelLevel domain.FuelLevel
	Notes     string
}

// ReturnDetails is recorded when an active rental is completed.
type ReturnDetails struct {
	Mileage        int32
	FuelLevel      domain.FuelLevel
	Notes          string
	DamageReported bool
}

type BookingService interface {
	CreateBooking(ctx context.Context, actor domain.Actor, in CreateBookingInput) (*domain.Booking, error)
	CheckAvailability(ctx context.Context, carID int32, start, end time.Time, excludeBookingID int32) (bool, error)
	GetBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error)
	ListBookings(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ConfirmBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error)
	StartRental(ctx context.Context, actor domain.Actor, id int32, details PickupDetails) (*domain.Booking, error)
	CompleteRental(ctx context.Context, actor domain.Actor, id int32, details ReturnDetails) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, id int32, reason string) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, actor domain.Actor, id int32, status domain.PaymentStatus) (*domain.Booking, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
}

// ReportIssueInput carries a new problem report. Booking and car references
// are optional; a service complaint may concern neither.
type ReportIssueInput struct {
	BookingID   *int32
	CarID       *int32
	Type        domain.IssueType
	Priority    domain.IssuePriority
	Title       string
	Description string
}

// IssueCostInput updates cost figures; nil fields are left untouched.
type IssueCostInput struct {
	EstimatedCostCents *int64
	ActualCostCents    *int64
}

type IssueService interface {
	ReportIssue(ctx context.Context, actor domain.Actor, in ReportIssueInput) (*domain.Issue, error)
	GetIssue(ctx context.Context, actor domain.Actor, id int32) (*domain.Issue, []domain.IssueUpdate, error)
	ListIssues(ctx context.Context, actor domain.Actor, status domain.IssueStatus, page, pageSize int32) ([]domain.Issue, int32, error)
	RespondToIssue(ctx context.Context, actor domain.Actor, id int32, response, resolution string) (*domain.Issue, error)
	SetIssueStatus(ctx context.Context, actor domain.Actor, id int32, status domain.IssueStatus) (*domain.Issue, error)
	SetIssuePriority(ctx context.Context, actor domain.Actor, id int32, priority domain.IssuePriority) (*domain.Issue, error)
	SetIssueCost(ctx context.Context, actor domain.Actor, id int32, in IssueCostInput) (*domain.Issue, error)
	AddIssueUpdate(ctx context.Context, actor domain.Actor, id int32, text string) (*domain.IssueUpdate, error)
	DeleteIssue(ctx context.Context, actor domain.Actor, id int32) error
	GetIssueStats(ctx context.Context, actor domain.Actor) (*domain.IssueStats, error)
}

type AdminService interface {
	GetBookingStats(ctx context.Context, actor domain.Actor) (*domain.BookingStats, error)
	ListAuditLogs(ctx context.Context, actor domain.Actor, action string, page, pageSize int32) ([]domain.AuditLog, int32, error)
	ListUsers(ctx context.Context, actor domain.Actor, role domain.Role, page, pageSize int32) ([]domain.User, int32, error)
	UpdateUserRole(ctx context.Context, actor domain.Actor, userID int32, role domain.Role) error
}

type EmailService interface {
	SendBookingCreatedNotification(ctx context.Context, email, name, carName string, start, end time.Time) error
	SendBookingConfirmedNotification(ctx context.Context, email, name, carName string, start time.Time) error
	SendBookingCancelledNotification(ctx context.Context, email, name, carName, reason string) error
	SendRentalCompletedNotification(ctx context.Context, email, name, carName string, loyaltyPoints int32) error
	SendPickupReminder(ctx context.Context, email, name, carName string, start time.Time) error
	SendOverdueReturnNotice(ctx context.Context, email, name, carName string, end time.Time) error
}
