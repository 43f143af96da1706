package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/cache"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

const defaultLocation = "Main Office"

type bookingService struct {
	bookingRepo   repository.BookingRepository
	carRepo       repository.CarRepository
	userRepo      repository.UserRepository
	noteRepo      repository.NotificationRepository
	auditRepo     repository.AuditLogRepository
	emailSvc      EmailService
	cache         *cache.Client
	loyaltyPoints int32
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	carRepo repository.CarRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	auditRepo repository.AuditLogRepository,
	emailSvc EmailService,
	cacheClient *cache.Client,
	loyaltyPoints int32,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		carRepo:       carRepo,
		userRepo:      userRepo,
		noteRepo:      noteRepo,
		auditRepo:     auditRepo,
		emailSvc:      emailSvc,
		cache:         cacheClient,
		loyaltyPoints: loyaltyPoints,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, in CreateBookingInput) (*domain.Booking, error) {
	if in.CustomerID == 0 {
		in.CustomerID = actor.ID
	}
	if in.CustomerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Unauthorized("cannot create a booking for another customer")
	}

	start := utils.TruncateToDay(in.StartDate)
	end := utils.TruncateToDay(in.EndDate)
	if !in.EndDate.After(in.StartDate) {
		return nil, apperr.Validation("end date must be after start date")
	}
	if start.Before(utils.TruncateToDay(time.Now())) {
		return nil, apperr.Validation("start date cannot be in the past")
	}

	customer, err := s.userRepo.GetByID(ctx, in.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("customer not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	car, err := s.carRepo.GetByID(ctx, in.CarID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("car not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if car.Status != domain.CarStatusAvailable {
		return nil, apperr.Conflict("car is not available for booking")
	}

	quote, err := utils.PriceQuote(in.StartDate, in.EndDate, car.PricePerDayCents)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	if in.PickupLocation == "" {
		in.PickupLocation = defaultLocation
	}
	if in.ReturnLocation == "" {
		in.ReturnLocation = defaultLocation
	}

	booking := &domain.Booking{
		Reference:           uuid.NewString(),
		CustomerID:          in.CustomerID,
		CarID:               in.CarID,
		StartDate:           start,
		EndDate:             end,
		PickupTime:          in.PickupTime,
		TotalDays:           quote.Days,
		PricePerDayCents:    car.PricePerDayCents,
		TotalPriceCents:     quote.TotalCents,
		Status:              domain.BookingStatusPending,
		PaymentStatus:       domain.PaymentStatusPending,
		Purpose:             in.Purpose,
		SpecialRequirements: in.SpecialRequirements,
		PickupLocation:      in.PickupLocation,
		ReturnLocation:      in.ReturnLocation,
		DriverLicense:       in.DriverLicense,
	}

	// The repository re-checks availability and the overlap window while
	// holding the car row lock, then flips the car to BOOKED in the same
	// transaction.
	if err := s.bookingRepo.CreateExclusive(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)

	carName := fmt.Sprintf("%s %s", car.Brand, car.Model)
	s.notify(ctx, &domain.Notification{
		UserID:    customer.ID,
		Type:      domain.NotificationTypeBooking,
		Title:     "Booking Created",
		Message:   fmt.Sprintf("Your booking for %s has been created and is pending confirmation.", carName),
		BookingID: &booking.ID,
		Priority:  domain.NotificationPriorityMedium,
	})
	s.audit(ctx, actor.ID, "Booking Created", fmt.Sprintf("Booking created for %s", carName), booking.ID)
	s.sendEmail(ctx, "SendBookingCreatedNotification",
		s.emailSvc.SendBookingCreatedNotification(ctx, customer.Email, customer.Name, carName, booking.StartDate, booking.EndDate))

	return booking, nil
}

// CheckAvailability is the read-only check behind the availability endpoint.
// It has no side effects and takes no locks; creation re-validates under lock.
func (s *bookingService) CheckAvailability(ctx context.Context, carID int32, start, end time.Time, excludeBookingID int32) (bool, error) {
	if !end.After(start) {
		return false, apperr.Validation("end date must be after start date")
	}
	holding, err := s.bookingRepo.ListHolding(ctx, carID, excludeBookingID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	for i := range holding {
		if utils.Overlaps(start, end, holding[i].StartDate, holding[i].EndDate) {
			return false, nil
		}
	}
	return true, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Unauthorized("not authorized to view this booking")
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	if actor.IsAdmin() {
		return s.bookingRepo.List(ctx, status, page, pageSize)
	}
	return s.bookingRepo.ListByCustomer(ctx, actor.ID, status, page, pageSize)
}

func (s *bookingService) ConfirmBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, apperr.Conflict("only a pending booking can be confirmed")
	}

	booking.Status = domain.BookingStatusConfirmed
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, apperr.Internal(err)
	}

	s.notify(ctx, &domain.Notification{
		UserID:    booking.CustomerID,
		Type:      domain.NotificationTypeBooking,
		Title:     "Booking Confirmed",
		Message:   fmt.Sprintf("Your booking has been confirmed! Pickup date: %s", booking.StartDate.Format("2006-01-02")),
		BookingID: &booking.ID,
		Priority:  domain.NotificationPriorityHigh,
	})
	s.audit(ctx, actor.ID, "Booking Confirmed", fmt.Sprintf("Booking %d confirmed by admin", booking.ID), booking.ID)

	if customer, car := s.lookupParties(ctx, booking); customer != nil && car != nil {
		s.sendEmail(ctx, "SendBookingConfirmedNotification",
			s.emailSvc.SendBookingConfirmedNotification(ctx, customer.Email, customer.Name,
				fmt.Sprintf("%s %s", car.Brand, car.Model), booking.StartDate))
	}

	return booking, nil
}

func (s *bookingService) StartRental(ctx context.Context, actor domain.Actor, id int32, details PickupDetails) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return nil, apperr.Conflict("booking must be confirmed before pickup")
	}

	now := time.Now()
	booking.Status = domain.BookingStatusActive
	booking.ActualPickupDate = &now
	booking.MileageAtPickup = &details.Mileage
	booking.FuelAtPickup = details.FuelLevel
	booking.PickupNotes = details.Notes

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, apperr.Internal(err)
	}

	s.audit(ctx, actor.ID, "Rental Started", fmt.Sprintf("Booking %d picked up", booking.ID), booking.ID)
	return booking, nil
}

func (s *bookingService) CompleteRental(ctx context.Context, actor domain.Actor, id int32, details ReturnDetails) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusActive {
		return nil, apperr.Conflict("booking must be active to process return")
	}

	now := time.Now()
	booking.Status = domain.BookingStatusCompleted
	booking.ActualReturnDate = &now
	booking.MileageAtReturn = &details.Mileage
	booking.FuelAtReturn = details.FuelLevel
	booking.ReturnNotes = details.Notes
	booking.DamageReported = details.DamageReported

	carStatus := domain.CarStatusAvailable
	if details.DamageReported {
		carStatus = domain.CarStatusMaintenance
	}
	var carMileage *int32
	if details.Mileage > 0 {
		carMileage = &details.Mileage
	}

	if err := s.bookingRepo.CompleteWithAward(ctx, booking, carStatus, carMileage, s.loyaltyPoints); err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)

	s.notify(ctx, &domain.Notification{
		UserID:    booking.CustomerID,
		Type:      domain.NotificationTypeLoyalty,
		Title:     "Loyalty Points Earned!",
		Message:   fmt.Sprintf("You've earned %d loyalty points for completing your rental.", s.loyaltyPoints),
		BookingID: &booking.ID,
		Priority:  domain.NotificationPriorityLow,
	})
	s.notify(ctx, &domain.Notification{
		UserID:    booking.CustomerID,
		Type:      domain.NotificationTypeBooking,
		Title:     "Rental Completed",
		Message:   "Your rental has been completed. Thank you for choosing us!",
		BookingID: &booking.ID,
		Priority:  domain.NotificationPriorityMedium,
	})
	s.audit(ctx, actor.ID, "Booking Completed", fmt.Sprintf("Booking %d completed", booking.ID), booking.ID)

	if customer, car := s.lookupParties(ctx, booking); customer != nil && car != nil {
		s.sendEmail(ctx, "SendRentalCompletedNotification",
			s.emailSvc.SendRentalCompletedNotification(ctx, customer.Email, customer.Name,
				fmt.Sprintf("%s %s", car.Brand, car.Model), s.loyaltyPoints))
	}

	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor domain.Actor, id int32, reason string) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Unauthorized("not authorized to cancel this booking")
	}
	if booking.Status.IsTerminal() {
		return nil, apperr.Conflict("cannot cancel a completed or already cancelled booking")
	}
	if booking.Status == domain.BookingStatusActive {
		return nil, apperr.Conflict("cannot cancel an active rental; process the return instead")
	}

	now := time.Now()
	booking.Status = domain.BookingStatusCancelled
	booking.CancellationReason = reason
	booking.CancelledBy = &actor.ID
	booking.CancelledAt = &now

	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	// Release the car only if this booking's hold is what keeps it BOOKED;
	// a car parked in MAINTENANCE stays there.
	if car.Status == domain.CarStatusBooked {
		err = s.bookingRepo.UpdateWithCar(ctx, booking, domain.CarStatusAvailable, nil)
	} else {
		err = s.bookingRepo.Update(ctx, booking)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.invalidateCatalog(ctx)

	message := "Your booking has been cancelled."
	if reason != "" {
		message = fmt.Sprintf("Your booking has been cancelled. Reason: %s", reason)
	}
	s.notify(ctx, &domain.Notification{
		UserID:    booking.CustomerID,
		Type:      domain.NotificationTypeBooking,
		Title:     "Booking Cancelled",
		Message:   message,
		BookingID: &booking.ID,
		Priority:  domain.NotificationPriorityMedium,
	})
	s.audit(ctx, actor.ID, "Booking Cancelled",
		fmt.Sprintf("Booking %d cancelled. Reason: %s", booking.ID, orUnspecified(reason)), booking.ID)

	if customer, err := s.userRepo.GetByID(ctx, booking.CustomerID); err == nil {
		s.sendEmail(ctx, "SendBookingCancelledNotification",
			s.emailSvc.SendBookingCancelledNotification(ctx, customer.Email, customer.Name,
				fmt.Sprintf("%s %s", car.Brand, car.Model), reason))
	}

	return booking, nil
}

func (s *bookingService) UpdatePaymentStatus(ctx context.Context, actor domain.Actor, id int32, status domain.PaymentStatus) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}
	switch status {
	case domain.PaymentStatusPending, domain.PaymentStatusPaid, domain.PaymentStatusRefunded:
	default:
		return nil, apperr.Validation("invalid payment status: %s", status)
	}

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, apperr.Conflict("cannot update payment on a completed or cancelled booking")
	}

	// Payment status never gates lifecycle transitions.
	booking.PaymentStatus = status
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, apperr.Internal(err)
	}

	s.audit(ctx, actor.ID, "Payment Status Updated",
		fmt.Sprintf("Booking %d payment status set to %s", booking.ID, status), booking.ID)
	return booking, nil
}

func (s *bookingService) getBooking(ctx context.Context, id int32) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("booking not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return booking, nil
}

func (s *bookingService) lookupParties(ctx context.Context, booking *domain.Booking) (*domain.User, *domain.Car) {
	customer, err := s.userRepo.GetByID(ctx, booking.CustomerID)
	if err != nil {
		return nil, nil
	}
	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return customer, nil
	}
	return customer, car
}

// Notification, audit, and email failures are logged and swallowed; they never
// fail the transition that triggered them.
func (s *bookingService) notify(ctx context.Context, n *domain.Notification) {
	if err := s.noteRepo.Create(ctx, n); err != nil {
		logger.Warn("Failed to create notification", "userID", n.UserID, "title", n.Title, "error", err)
	}
}

func (s *bookingService) audit(ctx context.Context, actorID int32, action, details string, bookingID int32) {
	entry := &domain.AuditLog{
		UserID:       actorID,
		Action:       action,
		Details:      details,
		ResourceType: "Booking",
		ResourceID:   bookingID,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log", "action", action, "bookingID", bookingID, "error", err)
	}
}

func (s *bookingService) sendEmail(ctx context.Context, operation string, err error) {
	if err != nil {
		logger.Warn("Failed to send email", "operation", operation, "error", err)
	}
}

func (s *bookingService) invalidateCatalog(ctx context.Context) {
	s.cache.DeleteByPrefix(ctx, "cars:catalog:")
	s.cache.Delete(ctx, cache.KeyAdminStats)
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
