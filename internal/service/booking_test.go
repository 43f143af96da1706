package service_test

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

const loyaltyPoints = int32(10)

type bookingFixture struct {
	bookingRepo *MockBookingRepo
	carRepo     *MockCarRepo
	userRepo    *MockUserRepo
	noteRepo    *MockNotificationRepo
	auditRepo   *MockAuditLogRepo
	emailSvc    *MockEmailService
	svc         service.BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookingRepo: new(MockBookingRepo),
		carRepo:     new(MockCarRepo),
		userRepo:    new(MockUserRepo),
		noteRepo:    new(MockNotificationRepo),
		auditRepo:   new(MockAuditLogRepo),
		emailSvc:    new(MockEmailService),
	}
	f.svc = service.NewBookingService(
		f.bookingRepo, f.carRepo, f.userRepo, f.noteRepo, f.auditRepo,
		f.emailSvc, nil, loyaltyPoints,
	)
	return f
}

func (f *bookingFixture) allowSideEffects() {
	f.noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil).Maybe()
	f.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Maybe()
	f.emailSvc.On("SendBookingCreatedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.emailSvc.On("SendBookingConfirmedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.emailSvc.On("SendBookingCancelledNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.emailSvc.On("SendRentalCompletedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	customer := domain.Actor{ID: 1, Role: domain.RoleCustomer}
	start := time.Now().AddDate(0, 0, 7)
	end := start.AddDate(0, 0, 2)

	car := &domain.Car{
		ID:               5,
		Brand:            "Toyota",
		Model:            "Corolla",
		PricePerDayCents: 4500,
		Status:           domain.CarStatusAvailable,
	}
	user := &domain.User{ID: 1, Name: "Alice", Email: "alice@test.com"}

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		f.userRepo.On("GetByID", ctx, int32(1)).Return(user, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(car, nil)
		f.bookingRepo.On("CreateExclusive", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil)
		f.allowSideEffects()

		booking, err := f.svc.CreateBooking(ctx, customer, service.CreateBookingInput{
			CarID:     5,
			StartDate: start,
			EndDate:   end,
		})
		assert.NoError(t, err)
		assert.NotNil(t, booking)
		assert.Equal(t, domain.BookingStatusPending, booking.Status)
		assert.Equal(t, domain.PaymentStatusPending, booking.PaymentStatus)
		assert.Equal(t, int32(2), booking.TotalDays)
		assert.Equal(t, int64(9000), booking.TotalPriceCents)
		assert.Equal(t, int64(4500), booking.PricePerDayCents)
		assert.NotEmpty(t, booking.Reference)
		assert.Equal(t, int32(1), booking.CustomerID)
	})

	t.Run("End before start", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.CreateBooking(ctx, customer, service.CreateBookingInput{
			CarID:     5,
			StartDate: end,
			EndDate:   start,
		})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("Start in the past", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.CreateBooking(ctx, customer, service.CreateBookingInput{
			CarID:     5,
			StartDate: time.Now().AddDate(0, 0, -3),
			EndDate:   time.Now().AddDate(0, 0, 2),
		})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("Car not available", func(t *testing.T) {
		f := newBookingFixture()
		busy := *car
		busy.Status = domain.CarStatusBooked
		f.userRepo.On("GetByID", ctx, int32(1)).Return(user, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(&busy, nil)

		_, err := f.svc.CreateBooking(ctx, customer, service.CreateBookingInput{
			CarID:     5,
			StartDate: start,
			EndDate:   end,
		})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("Car not found", func(t *testing.T) {
		f := newBookingFixture()
		f.userRepo.On("GetByID", ctx, int32(1)).Return(user, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(nil, sql.ErrNoRows)

		_, err := f.svc.CreateBooking(ctx, customer, service.CreateBookingInput{
			CarID:     5,
			StartDate: start,
			EndDate:   end,
		})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("Customer cannot book for someone else", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.CreateBooking(ctx, customer, service.CreateBookingInput{
			CustomerID: 99,
			CarID:      5,
			StartDate:  start,
			EndDate:    end,
		})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("Overlap conflict surfaces from repository", func(t *testing.T) {
		f := newBookingFixture()
		f.userRepo.On("GetByID", ctx, int32(1)).Return(user, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(car, nil)
		f.bookingRepo.On("CreateExclusive", ctx, mock.AnythingOfType("*domain.Booking")).
			Return(apperr.Conflict("car is already booked for the selected dates"))

		_, err := f.svc.CreateBooking(ctx, customer, service.CreateBookingInput{
			CarID:     5,
			StartDate: start,
			EndDate:   end,
		})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestBookingService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	start := time.Now().AddDate(0, 0, 7)
	end := start.AddDate(0, 0, 2)

	t.Run("Available when no holding booking overlaps", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("ListHolding", ctx, int32(5), int32(0)).
			Return([]domain.Booking{
				{ID: 9, Status: domain.BookingStatusConfirmed, StartDate: end.AddDate(0, 0, 3), EndDate: end.AddDate(0, 0, 5)},
			}, nil)

		ok, err := f.svc.CheckAvailability(ctx, 5, start, end, 0)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Unavailable when a holding booking overlaps", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("ListHolding", ctx, int32(5), int32(0)).
			Return([]domain.Booking{
				{ID: 9, Status: domain.BookingStatusConfirmed, StartDate: start.AddDate(0, 0, 1), EndDate: end.AddDate(0, 0, 4)},
			}, nil)

		ok, err := f.svc.CheckAvailability(ctx, 5, start, end, 0)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Booking ending on the candidate start day still conflicts", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("ListHolding", ctx, int32(5), int32(0)).
			Return([]domain.Booking{
				{ID: 9, Status: domain.BookingStatusActive, StartDate: start.AddDate(0, 0, -3), EndDate: start},
			}, nil)

		ok, err := f.svc.CheckAvailability(ctx, 5, start, end, 0)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

// Random ranges against a brute-force day-sharing oracle: the checker must
// reject a candidate exactly when it shares at least one calendar day with a
// holding booking.
func TestBookingService_CheckAvailability_RandomRanges(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	sharesDay := func(aStart, aEnd, bStart, bEnd time.Time) bool {
		for d := aStart; !d.After(aEnd); d = d.AddDate(0, 0, 1) {
			if !d.Before(bStart) && !d.After(bEnd) {
				return true
			}
		}
		return false
	}

	for i := 0; i < 250; i++ {
		candStart := base.AddDate(0, 0, rng.Intn(30))
		candEnd := candStart.AddDate(0, 0, 1+rng.Intn(9))
		heldStart := base.AddDate(0, 0, rng.Intn(30))
		heldEnd := heldStart.AddDate(0, 0, 1+rng.Intn(9))

		f := newBookingFixture()
		f.bookingRepo.On("ListHolding", ctx, int32(5), int32(0)).
			Return([]domain.Booking{
				{ID: 9, CarID: 5, Status: domain.BookingStatusPending, StartDate: heldStart, EndDate: heldEnd},
			}, nil)

		got, err := f.svc.CheckAvailability(ctx, 5, candStart, candEnd, 0)
		assert.NoError(t, err)
		want := !sharesDay(candStart, candEnd, heldStart, heldEnd)
		assert.Equalf(t, want, got,
			"candidate %s..%s vs held %s..%s",
			candStart.Format("2006-01-02"), candEnd.Format("2006-01-02"),
			heldStart.Format("2006-01-02"), heldEnd.Format("2006-01-02"))
	}
}

func TestBookingService_ConfirmBooking(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}
	customer := domain.Actor{ID: 1, Role: domain.RoleCustomer}

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, CarID: 5, Status: domain.BookingStatusPending}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)
		f.bookingRepo.On("Update", ctx, booking).Return(nil)
		f.userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "a@test.com"}, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(&domain.Car{ID: 5, Brand: "Toyota", Model: "Corolla"}, nil)
		f.allowSideEffects()

		res, err := f.svc.ConfirmBooking(ctx, admin, 7)
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, res.Status)
	})

	t.Run("Non-admin rejected", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.ConfirmBooking(ctx, customer, 7)
		assert.Error(t, err)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("Only pending can be confirmed", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, Status: domain.BookingStatusCancelled}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)

		_, err := f.svc.ConfirmBooking(ctx, admin, 7)
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestBookingService_StartRental(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}

	t.Run("Success records pickup details", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, CarID: 5, Status: domain.BookingStatusConfirmed}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)
		f.bookingRepo.On("Update", ctx, booking).Return(nil)
		f.allowSideEffects()

		res, err := f.svc.StartRental(ctx, admin, 7, service.PickupDetails{
			Mileage:   42000,
			FuelLevel: domain.FuelLevelFull,
			Notes:     "clean",
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusActive, res.Status)
		assert.NotNil(t, res.ActualPickupDate)
		assert.Equal(t, int32(42000), *res.MileageAtPickup)
		assert.Equal(t, domain.FuelLevelFull, res.FuelAtPickup)
	})

	t.Run("Pending booking cannot be picked up", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, Status: domain.BookingStatusPending}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)

		_, err := f.svc.StartRental(ctx, admin, 7, service.PickupDetails{})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestBookingService_CompleteRental(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}

	t.Run("Clean return releases car and awards loyalty once", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, CarID: 5, Status: domain.BookingStatusActive}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)
		f.bookingRepo.On("CompleteWithAward", ctx, booking, domain.CarStatusAvailable, mock.AnythingOfType("*int32"), loyaltyPoints).Return(nil)
		f.userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "a@test.com"}, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(&domain.Car{ID: 5, Brand: "Toyota", Model: "Corolla"}, nil)
		f.allowSideEffects()

		res, err := f.svc.CompleteRental(ctx, admin, 7, service.ReturnDetails{
			Mileage:   42350,
			FuelLevel: domain.FuelLevelHalf,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, res.Status)
		assert.NotNil(t, res.ActualReturnDate)
		f.bookingRepo.AssertNumberOfCalls(t, "CompleteWithAward", 1)
	})

	t.Run("Damage sends car to maintenance", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, CarID: 5, Status: domain.BookingStatusActive}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)
		f.bookingRepo.On("CompleteWithAward", ctx, booking, domain.CarStatusMaintenance, mock.AnythingOfType("*int32"), loyaltyPoints).Return(nil)
		f.userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "a@test.com"}, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(&domain.Car{ID: 5, Brand: "Toyota", Model: "Corolla"}, nil)
		f.allowSideEffects()

		res, err := f.svc.CompleteRental(ctx, admin, 7, service.ReturnDetails{
			Mileage:        42350,
			DamageReported: true,
		})
		assert.NoError(t, err)
		assert.True(t, res.DamageReported)
	})

	t.Run("Only an active rental can be returned", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, Status: domain.BookingStatusCompleted}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)

		_, err := f.svc.CompleteRental(ctx, admin, 7, service.ReturnDetails{})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		f.bookingRepo.AssertNotCalled(t, "CompleteWithAward", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 1, Role: domain.RoleCustomer}
	stranger := domain.Actor{ID: 3, Role: domain.RoleCustomer}
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}

	t.Run("Owner cancels pending booking and car is released", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, CarID: 5, Status: domain.BookingStatusPending}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(&domain.Car{ID: 5, Brand: "Toyota", Model: "Corolla", Status: domain.CarStatusBooked}, nil)
		f.bookingRepo.On("UpdateWithCar", ctx, booking, domain.CarStatusAvailable, (*int32)(nil)).Return(nil)
		f.userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "a@test.com"}, nil)
		f.allowSideEffects()

		res, err := f.svc.CancelBooking(ctx, owner, 7, "changed plans")
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, res.Status)
		assert.Equal(t, "changed plans", res.CancellationReason)
		assert.Equal(t, int32(1), *res.CancelledBy)
	})

	t.Run("Car in maintenance stays in maintenance", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, CarID: 5, Status: domain.BookingStatusConfirmed}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(&domain.Car{ID: 5, Status: domain.CarStatusMaintenance}, nil)
		f.bookingRepo.On("Update", ctx, booking).Return(nil)
		f.userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "a@test.com"}, nil)
		f.allowSideEffects()

		_, err := f.svc.CancelBooking(ctx, admin, 7, "")
		assert.NoError(t, err)
		f.bookingRepo.AssertNotCalled(t, "UpdateWithCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Stranger cannot cancel", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, Status: domain.BookingStatusPending}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)

		_, err := f.svc.CancelBooking(ctx, stranger, 7, "")
		assert.Error(t, err)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("Active rental cannot be cancelled", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, Status: domain.BookingStatusActive}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)

		_, err := f.svc.CancelBooking(ctx, owner, 7, "")
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("Terminal booking cannot be cancelled", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, Status: domain.BookingStatusCompleted}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)

		_, err := f.svc.CancelBooking(ctx, owner, 7, "")
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestBookingService_UpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}
	customer := domain.Actor{ID: 1, Role: domain.RoleCustomer}

	t.Run("Admin marks active booking paid", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1, Status: domain.BookingStatusActive, PaymentStatus: domain.PaymentStatusPending}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)
		f.bookingRepo.On("Update", ctx, booking).Return(nil)
		f.allowSideEffects()

		res, err := f.svc.UpdatePaymentStatus(ctx, admin, 7, domain.PaymentStatusPaid)
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, res.PaymentStatus)
		assert.Equal(t, domain.BookingStatusActive, res.Status)
	})

	t.Run("Customer rejected", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.UpdatePaymentStatus(ctx, customer, 7, domain.PaymentStatusPaid)
		assert.Error(t, err)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("Invalid status rejected", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.UpdatePaymentStatus(ctx, admin, 7, domain.PaymentStatus("DECLINED"))
		assert.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestBookingService_GetAndList(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 1, Role: domain.RoleCustomer}
	stranger := domain.Actor{ID: 3, Role: domain.RoleCustomer}
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}

	t.Run("Owner and admin can view, stranger cannot", func(t *testing.T) {
		f := newBookingFixture()
		booking := &domain.Booking{ID: 7, CustomerID: 1}
		f.bookingRepo.On("GetByID", ctx, int32(7)).Return(booking, nil)

		_, err := f.svc.GetBooking(ctx, owner, 7)
		assert.NoError(t, err)
		_, err = f.svc.GetBooking(ctx, admin, 7)
		assert.NoError(t, err)
		_, err = f.svc.GetBooking(ctx, stranger, 7)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("List scopes by role", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("ListByCustomer", ctx, int32(1), domain.BookingStatus(""), int32(1), int32(20)).
			Return([]domain.Booking{{ID: 7}}, int32(1), nil)
		f.bookingRepo.On("List", ctx, domain.BookingStatus(""), int32(1), int32(20)).
			Return([]domain.Booking{{ID: 7}, {ID: 8}}, int32(2), nil)

		mine, total, err := f.svc.ListBookings(ctx, owner, "", 1, 20)
		assert.NoError(t, err)
		assert.Len(t, mine, 1)
		assert.Equal(t, int32(1), total)

		all, total, err := f.svc.ListBookings(ctx, admin, "", 1, 20)
		assert.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Equal(t, int32(2), total)
	})
}
