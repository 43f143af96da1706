package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

const issueColumns = `id, reported_by, booking_id, car_id, type, priority, status, title, description,
	admin_response, responded_by, responded_at, resolution, resolved_at,
	estimated_cost_cents, actual_cost_cents, created_on, updated_on`

type issueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) repository.IssueRepository {
	return &issueRepository{db: db}
}

func scanIssue(row rowScanner) (*domain.Issue, error) {
	i := &domain.Issue{}
	err := row.Scan(
		&i.ID, &i.ReportedBy, &i.BookingID, &i.CarID, &i.Type, &i.Priority, &i.Status, &i.Title, &i.Description,
		&i.AdminResponse, &i.RespondedBy, &i.RespondedAt, &i.Resolution, &i.ResolvedAt,
		&i.EstimatedCostCents, &i.ActualCostCents, &i.CreatedOn, &i.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *issueRepository) Create(ctx context.Context, i *domain.Issue) error {
	now := time.Now()
	logger.DatabaseCall("INSERT", "issues", "reportedBy", i.ReportedBy, "type", i.Type)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO issues (reported_by, booking_id, car_id, type, priority, status, title, description,
			estimated_cost_cents, actual_cost_cents, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		i.ReportedBy, i.BookingID, i.CarID, i.Type, i.Priority, i.Status, i.Title, i.Description,
		i.EstimatedCostCents, i.ActualCostCents, now, now,
	).Scan(&i.ID)
	logger.DatabaseResult("INSERT", err, "issueID", i.ID)
	if err != nil {
		return err
	}
	i.CreatedOn = now
	i.UpdatedOn = now
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id int32) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`
	return scanIssue(r.db.QueryRowContext(ctx, query, id))
}

func (r *issueRepository) Update(ctx context.Context, i *domain.Issue) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE issues SET priority = $1, status = $2, admin_response = $3, responded_by = $4,
			responded_at = $5, resolution = $6, resolved_at = $7,
			estimated_cost_cents = $8, actual_cost_cents = $9, updated_on = $10
		 WHERE id = $11`,
		i.Priority, i.Status, i.AdminResponse, i.RespondedBy,
		i.RespondedAt, i.Resolution, i.ResolvedAt,
		i.EstimatedCostCents, i.ActualCostCents, now, i.ID,
	)
	if err != nil {
		return err
	}
	i.UpdatedOn = now
	return nil
}

// Delete reports sql.ErrNoRows when the issue does not exist.
func (r *issueRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *issueRepository) List(ctx context.Context, reportedBy int32, status domain.IssueStatus, page, pageSize int32) ([]domain.Issue, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + issueColumns + ` FROM issues WHERE TRUE`

	var args []any
	argIdx := 1
	if reportedBy != 0 {
		query += fmt.Sprintf(" AND reported_by = $%d", argIdx)
		args = append(args, reportedBy)
		argIdx++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var issues []domain.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		issues = append(issues, *i)
	}
	return issues, count, rows.Err()
}

func (r *issueRepository) AddUpdate(ctx context.Context, u *domain.IssueUpdate) error {
	now := time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO issue_updates (issue_id, updated_by, update_text, created_on)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		u.IssueID, u.UpdatedBy, u.Text, now,
	).Scan(&u.ID)
	if err != nil {
		return err
	}
	u.CreatedOn = now
	return nil
}

func (r *issueRepository) ListUpdates(ctx context.Context, issueID int32) ([]domain.IssueUpdate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, issue_id, updated_by, update_text, created_on
		 FROM issue_updates WHERE issue_id = $1 ORDER BY created_on`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []domain.IssueUpdate
	for rows.Next() {
		var u domain.IssueUpdate
		if err := rows.Scan(&u.ID, &u.IssueID, &u.UpdatedBy, &u.Text, &u.CreatedOn); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (r *issueRepository) Stats(ctx context.Context) (*domain.IssueStats, error) {
	stats := &domain.IssueStats{IssuesByType: map[domain.IssueType]int32{}}
	query := `SELECT count(*),
		count(*) FILTER (WHERE status = 'OPEN'),
		count(*) FILTER (WHERE status = 'IN_PROGRESS'),
		count(*) FILTER (WHERE status = 'RESOLVED'),
		count(*) FILTER (WHERE status = 'CLOSED'),
		count(*) FILTER (WHERE priority = 'CRITICAL' AND status IN ('OPEN', 'IN_PROGRESS'))
	 FROM issues`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalIssues, &stats.OpenIssues, &stats.InProgressIssues,
		&stats.ResolvedIssues, &stats.ClosedIssues, &stats.CriticalIssues,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT type, count(*) FROM issues GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var issueType domain.IssueType
		var count int32
		if err := rows.Scan(&issueType, &count); err != nil {
			return nil, err
		}
		stats.IssuesByType[issueType] = count
	}
	return stats, rows.Err()
}
