package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/ordertrack/internal/httpx"
	"github.com/aryan0dhankhar/ordertrack/internal/security/middleware"
	"github.com/aryan0dhankhar/ordertrack/internal/service"
)

// AdminHandler serves the approval queue
type AdminHandler struct {
	approvals *service.ApprovalService
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(approvals *service.ApprovalService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{approvals: approvals, logger: logger}
}

// StatusRequest is the body of a status change
type StatusRequest struct {
	Status string `json:"status"`
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.approvals.ListUsers(r.Context(), middleware.UserFromContext(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// SetStatus handles PATCH /api/admin/users/{id}/status
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user ID")
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	user, err := h.approvals.SetStatus(r.Context(), middleware.UserFromContext(r.Context()), id, req.Status)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
