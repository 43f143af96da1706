package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"carrental-backend/internal/logger"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "send", "to", to, "subject", subject)
	err := d.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}

	return nil
}

func (s *emailService) SendBookingCreatedNotification(ctx context.Context, email, name, carName string, start, end time.Time) error {
	body := fmt.Sprintf("Hello %s,\n\nYour booking for %s from %s to %s has been created and is pending confirmation.\n\nWe will notify you once an agent has confirmed it.\n\nBest regards,\nThe Car Rental Team",
		name, carName, start.Format("2006-01-02"), end.Format("2006-01-02"))
	return s.send(email, "Booking Received", body)
}

func (s *emailService) SendBookingConfirmedNotification(ctx context.Context, email, name, carName string, start time.Time) error {
	body := fmt.Sprintf("Hello %s,\n\nGood news! Your booking for %s has been confirmed.\n\nPickup date: %s.\n\nBest regards,\nThe Car Rental Team",
		name, carName, start.Format("2006-01-02"))
	return s.send(email, "Booking Confirmed", body)
}

func (s *emailService) SendBookingCancelledNotification(ctx context.Context, email, name, carName, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour booking for %s has been cancelled.", name, carName)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nThe Car Rental Team"
	return s.send(email, "Booking Cancelled", body)
}

func (s *emailService) SendRentalCompletedNotification(ctx context.Context, email, name, carName string, loyaltyPoints int32) error {
	body := fmt.Sprintf("Hello %s,\n\nThank you for returning %s. Your rental is now complete and %d loyalty points have been added to your account.\n\nWe hope to see you again soon.\n\nBest regards,\nThe Car Rental Team",
		name, carName, loyaltyPoints)
	return s.send(email, "Rental Completed", body)
}

func (s *emailService) SendPickupReminder(ctx context.Context, email, name, carName string, start time.Time) error {
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder that your rental of %s starts on %s.\n\nPlease bring your driver's license to the pickup location.\n\nBest regards,\nThe Car Rental Team",
		name, carName, start.Format("2006-01-02"))
	return s.send(email, "Upcoming Pickup Reminder", body)
}

func (s *emailService) SendOverdueReturnNotice(ctx context.Context, email, name, carName string, end time.Time) error {
	body := fmt.Sprintf("Hello %s,\n\nOur records show that %s was due back on %s and has not yet been returned.\n\nPlease return the vehicle or contact us as soon as possible.\n\nBest regards,\nThe Car Rental Team",
		name, carName, end.Format("2006-01-02"))
	return s.send(email, "Overdue Return Notice", body)
}
