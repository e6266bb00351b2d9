package service

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/security"
)

// CreateProjectInput is the project creation body
type CreateProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ProjectService manages projects owned by the calling user
type ProjectService struct {
	projects domain.ProjectRepository
	authz    *security.AuthorizationService
	logger   *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projects domain.ProjectRepository, authz *security.AuthorizationService, logger *slog.Logger) *ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	return &ProjectService{projects: projects, authz: authz, logger: logger}
}

// List returns the caller's projects
func (s *ProjectService) List(ctx context.Context, user *domain.User) ([]*domain.Project, error) {
	if err := s.authz.ValidatePermission(user, security.PermManageProjects); err != nil {
		return nil, err
	}
	return s.projects.ListByUser(ctx, user.ID)
}

// Create stores a project owned by user
func (s *ProjectService) Create(ctx context.Context, user *domain.User, in CreateProjectInput) (*domain.Project, error) {
	if err := s.authz.ValidatePermission(user, security.PermManageProjects); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
	)
	if err != nil {
		return nil, fieldErrors(err)
	}

	project := &domain.Project{
		UserID:      user.ID,
		Name:        in.Name,
		Description: optional(in.Description),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		slog.Int64("project_id", project.ID),
		slog.Int64("user_id", user.ID),
	)
	return project, nil
}

// Authorize loads projectID and checks that user owns it
func (s *ProjectService) Authorize(ctx context.Context, user *domain.User, projectID int64) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(user, project.UserID, security.ResourceProject, project.ID); err != nil {
		return nil, err
	}
	return project, nil
}
