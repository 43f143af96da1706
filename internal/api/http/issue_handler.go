package http

import (
	"net/http"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type IssueHandler struct {
	issueSvc service.IssueService
}

func NewIssueHandler(issueSvc service.IssueService) *IssueHandler {
	return &IssueHandler{issueSvc: issueSvc}
}

type reportIssueRequest struct {
	BookingID   *int32 `json:"booking_id"`
	CarID       *int32 `json:"car_id"`
	Type        string `json:"type" validate:"required,oneof=VEHICLE_DAMAGE MECHANICAL_PROBLEM SERVICE_COMPLAINT BILLING_ISSUE OTHER"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type issueResponseRequest struct {
	Response   string `json:"response" validate:"required"`
	Resolution string `json:"resolution"`
}

type issueStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}

type issuePriorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
}

type issueCostRequest struct {
	EstimatedCostCents *int64 `json:"estimated_cost_cents" validate:"omitempty,gte=0"`
	ActualCostCents    *int64 `json:"actual_cost_cents" validate:"omitempty,gte=0"`
}

type issueUpdateRequest struct {
	Text string `json:"text" validate:"required"`
}

type issueDetailResponse struct {
	Issue   *domain.Issue        `json:"issue"`
	Updates []domain.IssueUpdate `json:"updates"`
}

func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var req reportIssueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	issue, err := h.issueSvc.ReportIssue(r.Context(), actor, service.ReportIssueInput{
		BookingID:   req.BookingID,
		CarID:       req.CarID,
		Type:        domain.IssueType(req.Type),
		Priority:    domain.IssuePriority(req.Priority),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	status := domain.IssueStatus(r.URL.Query().Get("status"))
	page, pageSize := pagination(r)

	issues, total, err := h.issueSvc.ListIssues(r.Context(), actor, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: issues, Total: total, Page: page})
}

func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	issue, updates, err := h.issueSvc.GetIssue(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issueDetailResponse{Issue: issue, Updates: updates})
}

func (h *IssueHandler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req issueResponseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	issue, err := h.issueSvc.RespondToIssue(r.Context(), actor, id, req.Response, req.Resolution)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (h *IssueHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req issueStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	issue, err := h.issueSvc.SetIssueStatus(r.Context(), actor, id, domain.IssueStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (h *IssueHandler) SetPriority(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req issuePriorityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	issue, err := h.issueSvc.SetIssuePriority(r.Context(), actor, id, domain.IssuePriority(req.Priority))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (h *IssueHandler) SetCost(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req issueCostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	issue, err := h.issueSvc.SetIssueCost(r.Context(), actor, id, service.IssueCostInput{
		EstimatedCostCents: req.EstimatedCostCents,
		ActualCostCents:    req.ActualCostCents,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (h *IssueHandler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req issueUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	update, err := h.issueSvc.AddIssueUpdate(r.Context(), actor, id, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, update)
}

func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.issueSvc.DeleteIssue(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats is registered before the /{id} routes so "stats" is not parsed as an id.
func (h *IssueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	stats, err := h.issueSvc.GetIssueStats(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
