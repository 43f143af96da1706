package domain

import "time"

type AuditLog struct {
	ID           int32     `json:"id"`
	UserID       int32     `json:"user_id"`
	Action       string    `json:"action"`
	Details      string    `json:"details"`
	ResourceType string    `json:"resource_type"`
	ResourceID   int32     `json:"resource_id"`
	CreatedOn    time.Time `json:"created_on"`
}
