package jobs

import (
	"context"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/utils"
)

const jobTimeout = 5 * time.Minute

// MarkOverdueReturns notifies customers whose active rental has passed its end
// date. The booking stays ACTIVE until an agent processes the return; this job
// only chases, it never transitions.
func (jr *JobRunner) MarkOverdueReturns() {
	jr.runWithRecovery("MarkOverdueReturns", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		today := utils.TruncateToDay(time.Now().UTC())
		overdue, err := jr.store.BookingRepository.ListOverdue(ctx, today)
		if err != nil {
			logger.Error("Failed to query overdue rentals", "error", err)
			return
		}

		notified := 0
		for i := range overdue {
			b := &overdue[i]
			if err := jr.notifyBooking(ctx, b,
				domain.NotificationTypeReminder,
				"Return Overdue",
				fmt.Sprintf("Your rental was due back on %s. Please return the vehicle as soon as possible.",
					b.EndDate.Format("2006-01-02")),
				domain.NotificationPriorityHigh,
			); err != nil {
				logger.Error("Failed to notify overdue rental", "bookingID", b.ID, "error", err)
				continue
			}

			customer, car, err := jr.bookingParties(ctx, b)
			if err == nil {
				if err := jr.services.Email.SendOverdueReturnNotice(ctx, customer.Email, customer.Name,
					fmt.Sprintf("%s %s", car.Brand, car.Model), b.EndDate); err != nil {
					logger.Warn("Failed to send overdue email", "bookingID", b.ID, "error", err)
				}
			}
			notified++
		}

		logger.Info("Overdue rental sweep finished", "overdue", len(overdue), "notified", notified)
	})
}

// SendPickupReminders reminds customers whose confirmed booking starts tomorrow.
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		tomorrow := utils.TruncateToDay(time.Now().UTC()).AddDate(0, 0, 1)
		upcoming, err := jr.store.BookingRepository.ListStartingOn(ctx, tomorrow)
		if err != nil {
			logger.Error("Failed to query upcoming pickups", "error", err)
			return
		}

		reminded := 0
		for i := range upcoming {
			b := &upcoming[i]
			if err := jr.notifyBooking(ctx, b,
				domain.NotificationTypeReminder,
				"Pickup Tomorrow",
				fmt.Sprintf("Your rental starts tomorrow (%s). Don't forget your driver's license!",
					b.StartDate.Format("2006-01-02")),
				domain.NotificationPriorityMedium,
			); err != nil {
				logger.Error("Failed to send pickup reminder", "bookingID", b.ID, "error", err)
				continue
			}

			customer, car, err := jr.bookingParties(ctx, b)
			if err == nil {
				if err := jr.services.Email.SendPickupReminder(ctx, customer.Email, customer.Name,
					fmt.Sprintf("%s %s", car.Brand, car.Model), b.StartDate); err != nil {
					logger.Warn("Failed to send reminder email", "bookingID", b.ID, "error", err)
				}
			}
			reminded++
		}

		logger.Info("Pickup reminder sweep finished", "upcoming", len(upcoming), "reminded", reminded)
	})
}

func (jr *JobRunner) notifyBooking(ctx context.Context, b *domain.Booking, typ domain.NotificationType, title, message string, priority domain.NotificationPriority) error {
	return jr.store.NotificationRepository.Create(ctx, &domain.Notification{
		UserID:    b.CustomerID,
		Type:      typ,
		Title:     title,
		Message:   message,
		BookingID: &b.ID,
		Priority:  priority,
	})
}

func (jr *JobRunner) bookingParties(ctx context.Context, b *domain.Booking) (*domain.User, *domain.Car, error) {
	customer, err := jr.store.UserRepository.GetByID(ctx, b.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	car, err := jr.store.CarRepository.GetByID(ctx, b.CarID)
	if err != nil {
		return nil, nil, err
	}
	return customer, car, nil
}
