package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/ordertrack/internal/httpx"
	"github.com/aryan0dhankhar/ordertrack/internal/security/middleware"
	"github.com/aryan0dhankhar/ordertrack/internal/service"
)

// ProjectsHandler handles project endpoints
type ProjectsHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

// NewProjectsHandler creates a new projects handler
func NewProjectsHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectsHandler{projects: projects, logger: logger}
}

// List handles GET /api/projects
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}

// Create handles POST /api/projects
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProjectInput
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	project, err := h.projects.Create(r.Context(), middleware.UserFromContext(r.Context()), req)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}
