package domain

import "time"

type IssueType string

const (
	IssueTypeVehicleDamage     IssueType = "VEHICLE_DAMAGE"
	IssueTypeMechanicalProblem IssueType = "MECHANICAL_PROBLEM"
	IssueTypeServiceComplaint  IssueType = "SERVICE_COMPLAINT"
	IssueTypeBilling           IssueType = "BILLING_ISSUE"
	IssueTypeOther             IssueType = "OTHER"
)

type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "LOW"
	IssuePriorityMedium   IssuePriority = "MEDIUM"
	IssuePriorityHigh     IssuePriority = "HIGH"
	IssuePriorityCritical IssuePriority = "CRITICAL"
)

type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// Issue is a problem report filed by a customer or agent, optionally tied to
// a booking or a specific car.
type Issue struct {
	ID          int32         `json:"id"`
	ReportedBy  int32         `json:"reported_by"`
	BookingID   *int32        `json:"booking_id,omitempty"`
	CarID       *int32        `json:"car_id,omitempty"`
	Type        IssueType     `json:"type"`
	Priority    IssuePriority `json:"priority"`
	Status      IssueStatus   `json:"status"`
	Title       string        `json:"title"`
	Description string        `json:"description"`

	AdminResponse string     `json:"admin_response,omitempty"`
	RespondedBy   *int32     `json:"responded_by,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	Resolution    string     `json:"resolution,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`

	EstimatedCostCents int64 `json:"estimated_cost_cents"`
	ActualCostCents    int64 `json:"actual_cost_cents"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// IssueUpdate is one entry in an issue's progress thread.
type IssueUpdate struct {
	ID        int32     `json:"id"`
	IssueID   int32     `json:"issue_id"`
	UpdatedBy int32     `json:"updated_by"`
	Text      string    `json:"text"`
	CreatedOn time.Time `json:"created_on"`
}

// IssueStats is the admin dashboard aggregate over the issue queue.
type IssueStats struct {
	TotalIssues      int32 `json:"total_issues"`
	OpenIssues       int32 `json:"open_issues"`
	InProgressIssues int32 `json:"in_progress_issues"`
	ResolvedIssues   int32 `json:"resolved_issues"`
	ClosedIssues     int32 `json:"closed_issues"`
	// Critical-priority issues that are still open or in progress.
	CriticalIssues int32               `json:"critical_issues"`
	IssuesByType   map[IssueType]int32 `json:"issues_by_type"`
}
