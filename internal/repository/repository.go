package repository

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, id int32, role domain.Role) error
	List(ctx context.Context, role domain.Role, page, pageSize int32) ([]domain.User, int32, error)
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id int32) (*domain.Car, error)
	Update(ctx context.Context, car *domain.Car) error
	Delete(ctx context.Context, id int32) error
	UpdateStatus(ctx context.Context, id int32, status domain.CarStatus) error
	List(ctx context.Context, filter domain.CarFilter, page, pageSize int32) ([]domain.Car, int32, error)
}

type BookingRepository interface {
	// CreateExclusive inserts the booking and flips its car to BOOKED as one
	// transaction. The car row is locked first and the overlap check re-run
	// under the lock, so two concurrent requests for the same car serialize
	// and the loser gets a conflict.
	CreateExclusive(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	// UpdateWithCar persists booking changes and the car's new status (plus an
	// optional odometer update) in a single transaction.
	UpdateWithCar(ctx context.Context, booking *domain.Booking, carStatus domain.CarStatus, carMileage *int32) error
	// CompleteWithAward applies the return transition atomically: booking
	// fields, car status and odometer, and the customer's loyalty award
	// (+points, +1 completed booking) commit or roll back together, so the
	// award happens exactly once per booking.
	CompleteWithAward(ctx context.Context, booking *domain.Booking, carStatus domain.CarStatus, carMileage *int32, loyaltyPoints int32) error
	// ListHolding returns every booking for the car whose status still holds
	// its calendar (see domain.HoldingStatuses). The caller decides overlap;
	// excludeBookingID skips a booking being re-checked during an edit.
	ListHolding(ctx context.Context, carID, excludeBookingID int32) ([]domain.Booking, error)
	// ListOverdue returns active rentals whose end date passed before asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Booking, error)
	// ListStartingOn returns confirmed bookings whose rental starts on day.
	ListStartingOn(ctx context.Context, day time.Time) ([]domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	List(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	Stats(ctx context.Context) (*domain.BookingStats, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
}

type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id int32) (*domain.Issue, error)
	Update(ctx context.Context, issue *domain.Issue) error
	Delete(ctx context.Context, id int32) error
	// List scopes to one reporter when reportedBy is non-zero; zero lists all.
	List(ctx context.Context, reportedBy int32, status domain.IssueStatus, page, pageSize int32) ([]domain.Issue, int32, error)
	AddUpdate(ctx context.Context, update *domain.IssueUpdate) error
	ListUpdates(ctx context.Context, issueID int32) ([]domain.IssueUpdate, error)
	Stats(ctx context.Context) (*domain.IssueStats, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, action string, page, pageSize int32) ([]domain.AuditLog, int32, error)
}
