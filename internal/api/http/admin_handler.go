package http

import (
	"net/http"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type AdminHandler struct {
	adminSvc service.AdminService
}

func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

func (h *AdminHandler) BookingStats(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	stats, err := h.adminSvc.GetBookingStats(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	page, pageSize := pagination(r)

	logs, total, err := h.adminSvc.ListAuditLogs(r.Context(), actor, r.URL.Query().Get("action"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: logs, Total: total, Page: page})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	page, pageSize := pagination(r)
	role := domain.Role(r.URL.Query().Get("role"))

	users, total, err := h.adminSvc.ListUsers(r.Context(), actor, role, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: users, Total: total, Page: page})
}

func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" validate:"required,oneof=customer admin"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.adminSvc.UpdateUserRole(r.Context(), actor, id, domain.Role(req.Role)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
