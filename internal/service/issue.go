package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type issueService struct {
	issueRepo repository.IssueRepository
	noteRepo  repository.NotificationRepository
}

func NewIssueService(issueRepo repository.IssueRepository, noteRepo repository.NotificationRepository) IssueService {
	return &issueService{
		issueRepo: issueRepo,
		noteRepo:  noteRepo,
	}
}

func (s *issueService) ReportIssue(ctx context.Context, actor domain.Actor, in ReportIssueInput) (*domain.Issue, error) {
	if in.Title == "" || in.Description == "" {
		return nil, apperr.Validation("title and description are required")
	}
	if !validIssueType(in.Type) {
		return nil, apperr.Validation("invalid issue type: %s", in.Type)
	}
	if in.Priority == "" {
		in.Priority = domain.IssuePriorityMedium
	}
	if !validIssuePriority(in.Priority) {
		return nil, apperr.Validation("invalid priority: %s", in.Priority)
	}

	issue := &domain.Issue{
		ReportedBy:  actor.ID,
		BookingID:   in.BookingID,
		CarID:       in.CarID,
		Type:        in.Type,
		Priority:    in.Priority,
		Status:      domain.IssueStatusOpen,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, apperr.Internal(err)
	}
	return issue, nil
}

func (s *issueService) GetIssue(ctx context.Context, actor domain.Actor, id int32) (*domain.Issue, []domain.IssueUpdate, error) {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if issue.ReportedBy != actor.ID && !actor.IsAdmin() {
		return nil, nil, apperr.Unauthorized("not authorized to view this issue")
	}

	updates, err := s.issueRepo.ListUpdates(ctx, id)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return issue, updates, nil
}

// ListIssues returns the actor's own reports, or the whole queue for admins.
func (s *issueService) ListIssues(ctx context.Context, actor domain.Actor, status domain.IssueStatus, page, pageSize int32) ([]domain.Issue, int32, error) {
	reportedBy := actor.ID
	if actor.IsAdmin() {
		reportedBy = 0
	}
	issues, total, err := s.issueRepo.List(ctx, reportedBy, status, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return issues, total, nil
}

func (s *issueService) RespondToIssue(ctx context.Context, actor domain.Actor, id int32, response, resolution string) (*domain.Issue, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}
	if response == "" {
		return nil, apperr.Validation("response text is required")
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	issue.AdminResponse = response
	issue.RespondedBy = &actor.ID
	issue.RespondedAt = &now
	if resolution != "" {
		issue.Resolution = resolution
	}
	// A first response moves a fresh report into the working queue.
	if issue.Status == domain.IssueStatusOpen {
		issue.Status = domain.IssueStatusInProgress
	}

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, apperr.Internal(err)
	}

	s.notifyReporter(ctx, issue, "Issue Response",
		fmt.Sprintf("An agent has responded to your issue %q.", issue.Title))
	return issue, nil
}

func (s *issueService) SetIssueStatus(ctx context.Context, actor domain.Actor, id int32, status domain.IssueStatus) (*domain.Issue, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}
	if !validIssueStatus(status) {
		return nil, apperr.Validation("invalid issue status: %s", status)
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	issue.Status = status
	if status == domain.IssueStatusResolved && issue.ResolvedAt == nil {
		now := time.Now()
		issue.ResolvedAt = &now
	}

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, apperr.Internal(err)
	}

	if status == domain.IssueStatusResolved {
		s.notifyReporter(ctx, issue, "Issue Resolved",
			fmt.Sprintf("Your issue %q has been resolved.", issue.Title))
	}
	return issue, nil
}

func (s *issueService) SetIssuePriority(ctx context.Context, actor domain.Actor, id int32, priority domain.IssuePriority) (*domain.Issue, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}
	if !validIssuePriority(priority) {
		return nil, apperr.Validation("invalid priority: %s", priority)
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	issue.Priority = priority
	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, apperr.Internal(err)
	}
	return issue, nil
}

func (s *issueService) SetIssueCost(ctx context.Context, actor domain.Actor, id int32, in IssueCostInput) (*domain.Issue, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.EstimatedCostCents != nil {
		issue.EstimatedCostCents = *in.EstimatedCostCents
	}
	if in.ActualCostCents != nil {
		issue.ActualCostCents = *in.ActualCostCents
	}

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, apperr.Internal(err)
	}
	return issue, nil
}

func (s *issueService) AddIssueUpdate(ctx context.Context, actor domain.Actor, id int32, text string) (*domain.IssueUpdate, error) {
	if text == "" {
		return nil, apperr.Validation("update text is required")
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.ReportedBy != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Unauthorized("not authorized to update this issue")
	}

	update := &domain.IssueUpdate{
		IssueID:   issue.ID,
		UpdatedBy: actor.ID,
		Text:      text,
	}
	if err := s.issueRepo.AddUpdate(ctx, update); err != nil {
		return nil, apperr.Internal(err)
	}
	return update, nil
}

func (s *issueService) DeleteIssue(ctx context.Context, actor domain.Actor, id int32) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized("admin access required")
	}

	err := s.issueRepo.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("issue not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *issueService) GetIssueStats(ctx context.Context, actor domain.Actor) (*domain.IssueStats, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized("admin access required")
	}

	stats, err := s.issueRepo.Stats(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

func (s *issueService) getIssue(ctx context.Context, id int32) (*domain.Issue, error) {
	issue, err := s.issueRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("issue not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return issue, nil
}

func (s *issueService) notifyReporter(ctx context.Context, issue *domain.Issue, title, message string) {
	if err := s.noteRepo.Create(ctx, &domain.Notification{
		UserID:    issue.ReportedBy,
		Type:      domain.NotificationTypeAccount,
		Title:     title,
		Message:   message,
		BookingID: issue.BookingID,
		Priority:  domain.NotificationPriorityMedium,
	}); err != nil {
		logger.Warn("Failed to create issue notification", "issueID", issue.ID, "error", err)
	}
}

func validIssueType(t domain.IssueType) bool {
	switch t {
	case domain.IssueTypeVehicleDamage, domain.IssueTypeMechanicalProblem,
		domain.IssueTypeServiceComplaint, domain.IssueTypeBilling, domain.IssueTypeOther:
		return true
	}
	return false
}

func validIssuePriority(p domain.IssuePriority) bool {
	switch p {
	case domain.IssuePriorityLow, domain.IssuePriorityMedium,
		domain.IssuePriorityHigh, domain.IssuePriorityCritical:
		return true
	}
	return false
}

func validIssueStatus(s domain.IssueStatus) bool {
	switch s {
	case domain.IssueStatusOpen, domain.IssueStatusInProgress,
		domain.IssueStatusResolved, domain.IssueStatusClosed:
		return true
	}
	return false
}
