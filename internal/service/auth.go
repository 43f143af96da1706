package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/security"
)

type authService struct {
	userRepo repository.UserRepository
	noteRepo repository.NotificationRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, noteRepo repository.NotificationRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		noteRepo: noteRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(ctx context.Context, name, email, phone, password string) (*domain.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", "", apperr.Validation("name, email, and password are required")
	}
	if len(password) < 8 {
		return nil, "", "", apperr.Validation("password must be at least 8 characters")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", "", apperr.Conflict("an account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", "", apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", apperr.Internal(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        phone,
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", "", apperr.Internal(err)
	}

	if err := s.noteRepo.Create(ctx, &domain.Notification{
		UserID:   user.ID,
		Type:     domain.NotificationTypeAccount,
		Title:    "Welcome!",
		Message:  "Your account has been created. Browse our fleet and book your first car.",
		Priority: domain.NotificationPriorityLow,
	}); err != nil {
		logger.Warn("Failed to create welcome notification", "userID", user.ID, "error", err)
	}

	return s.issueTokens(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		// Same message as a bad password so callers cannot enumerate accounts.
		return nil, "", "", apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, "", "", apperr.Internal(err)
	}
	if !user.IsActive {
		return nil, "", "", apperr.Unauthorized("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", apperr.Unauthorized("invalid email or password")
	}

	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", "", apperr.Unauthorized("invalid or expired refresh token")
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", apperr.Unauthorized("%s", security.ErrWrongTokenType.Error())
	}

	// Role is re-read from storage so a role change takes effect on refresh.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", apperr.Unauthorized("account no longer exists")
	}
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	if !user.IsActive {
		return "", "", apperr.Unauthorized("account is deactivated")
	}

	_, access, refresh, err := s.issueTokens(user)
	return access, refresh, err
}

func (s *authService) issueTokens(user *domain.User) (*domain.User, string, string, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", "", apperr.Internal(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, "", "", apperr.Internal(err)
	}
	return user, access, refresh, nil
}
