package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/cache"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type adminService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditLogRepository
	noteRepo    repository.NotificationRepository
	cache       *cache.Client
}

func NewAdminService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	noteRepo repository.NotificationRepository,
	cacheClient *cache.Client,
) AdminService {
	return &adminService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		noteRepo:    noteRepo,
		cache:       cacheClient,
	}
}

func (s *adminService) GetBookingStats(ctx context.Context, actor domain.Actor) (*domain.BookingStats, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}

	var stats domain.BookingStats
	if s.cache.GetJSON(ctx, cache.KeyAdminStats, &stats) {
		return &stats, nil
	}

	fresh, err := s.bookingRepo.Stats(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.cache.SetJSON(ctx, cache.KeyAdminStats, fresh, cache.TTLStats)
	return fresh, nil
}

func (s *adminService) ListAuditLogs(ctx context.Context, actor domain.Actor, action string, page, pageSize int32) ([]domain.AuditLog, int32, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperr.Unauthorized("admin access required")
	}
	logs, total, err := s.auditRepo.List(ctx, action, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return logs, total, nil
}

func (s *adminService) ListUsers(ctx context.Context, actor domain.Actor, role domain.Role, page, pageSize int32) ([]domain.User, int32, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperr.Unauthorized("admin access required")
	}
	users, total, err := s.userRepo.List(ctx, role, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

func (s *adminService) UpdateUserRole(ctx context.Context, actor domain.Actor, userID int32, role domain.Role) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized("admin access required")
	}
	switch role {
	case domain.RoleCustomer, domain.RoleAdmin:
	default:
		return apperr.Validation("invalid role: %s", role)
	}
	if userID == actor.ID {
		return apperr.Conflict("cannot change your own role")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if user.Role == role {
		return nil
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return apperr.Internal(err)
	}

	if err := s.noteRepo.Create(ctx, &domain.Notification{
		UserID:   userID,
		Type:     domain.NotificationTypeAccount,
		Title:    "Account Role Updated",
		Message:  fmt.Sprintf("Your account role has been changed to %s.", role),
		Priority: domain.NotificationPriorityHigh,
	}); err != nil {
		logger.Warn("Failed to create role change notification", "userID", userID, "error", err)
	}
	if err := s.auditRepo.Create(ctx, &domain.AuditLog{
		UserID:       actor.ID,
		Action:       "User Role Updated",
		Details:      fmt.Sprintf("User %d role changed from %s to %s", userID, user.Role, role),
		ResourceType: "User",
		ResourceID:   userID,
	}); err != nil {
		logger.Warn("Failed to write audit log", "action", "User Role Updated", "userID", userID, "error", err)
	}

	return nil
}
