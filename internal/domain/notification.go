package domain

import "time"

type NotificationType string

const (
	NotificationTypeBooking  NotificationType = "BOOKING"
	NotificationTypeLoyalty  NotificationType = "LOYALTY"
	NotificationTypeReminder NotificationType = "REMINDER"
	NotificationTypeAccount  NotificationType = "ACCOUNT"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

type Notification struct {
	ID        int32                `json:"id"`
	UserID    int32                `json:"user_id"`
	Type      NotificationType     `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	BookingID *int32               `json:"booking_id,omitempty"`
	Priority  NotificationPriority `json:"priority"`
	IsRead    bool                 `json:"is_read"`
	CreatedOn time.Time            `json:"created_on"`
}
