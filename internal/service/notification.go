package service

import (
	"context"
	"database/sql"
	"errors"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notes, total, err := s.noteRepo.List(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return notes, total, nil
}

// MarkAsRead only touches notifications owned by userID; marking someone
// else's notification reports not found rather than leaking its existence.
func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	err := s.noteRepo.MarkAsRead(ctx, notificationID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int32) error {
	if err := s.noteRepo.MarkAllAsRead(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
