package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/ordertrack/internal/security"
	"github.com/aryan0dhankhar/ordertrack/internal/security/audit"
)

// Errors returned by the approval workflow
var (
	ErrAccountPending = domain.NewAuthorizationError(
		"Your account is pending approval. Please wait for administrator review.")
	ErrAccountRejected = domain.NewAuthorizationError(
		"Your registration has been rejected. Please contact administrator.")
	ErrInvalidStatus = domain.NewValidationError("Invalid status",
		map[string]string{"status": "must be one of pending, approved, rejected"})
	ErrStatusFinal = domain.NewConflictError("User status is final")
)

// LoginGate returns nil only for approved accounts
func LoginGate(user *domain.User) error {
	switch user.Status {
	case domain.UserStatusApproved:
		return nil
	case domain.UserStatusRejected:
		return ErrAccountRejected
	default:
		return ErrAccountPending
	}
}

// CanTransition reports whether an account may move from one status to
// another. Staying in the same status is always allowed.
func CanTransition(from, to domain.UserStatus) bool {
	if from == to {
		return true
	}
	return from == domain.UserStatusPending &&
		(to == domain.UserStatusApproved || to == domain.UserStatusRejected)
}

// ApprovalService drives the account approval workflow
type ApprovalService struct {
	users  domain.UserRepository
	authz  *security.AuthorizationService
	audit  *audit.Logger
	logger *slog.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	users domain.UserRepository,
	authz *security.AuthorizationService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *ApprovalService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &ApprovalService{users: users, authz: authz, audit: auditLog, logger: logger}
}

// ListUsers returns every account, or only those in rawStatus when it is set.
// actor must hold the manage_users permission.
func (s *ApprovalService) ListUsers(ctx context.Context, actor *domain.User, rawStatus string) ([]*domain.User, error) {
	if err := s.authz.ValidatePermission(actor, security.PermManageUsers); err != nil {
		return nil, err
	}
	if rawStatus == "" {
		return s.users.List(ctx, nil)
	}
	status, ok := domain.ParseUserStatus(rawStatus)
	if !ok {
		return nil, ErrInvalidStatus
	}
	return s.users.List(ctx, &status)
}

// SetStatus records an administrator's decision on userID
func (s *ApprovalService) SetStatus(ctx context.Context, actor *domain.User, userID int64, rawStatus string) (*domain.User, error) {
	if err := s.authz.ValidatePermission(actor, security.PermManageUsers); err != nil {
		return nil, err
	}
	status, ok := domain.ParseUserStatus(rawStatus)
	if !ok {
		return nil, ErrInvalidStatus
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}
	if !CanTransition(user.Status, status) {
		s.logger.Warn("refused status transition",
			slog.Int64("user_id", userID),
			slog.String("from", string(user.Status)),
			slog.String("to", string(status)),
		)
		return nil, ErrStatusFinal
	}

	updated, err := s.users.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	s.audit.LogStatusChange(ctx, actor.ID, userID, string(user.Status), string(status))
	metrics.ObserveStatusChange(string(status))
	s.logger.Info("user status changed",
		slog.Int64("user_id", userID),
		slog.String("status", string(status)),
	)
	return updated, nil
}

// Promote makes the account registered under email an approved admin. It is
// the bootstrap path for the first administrator.
func (s *ApprovalService) Promote(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("promote %s: %w", email, err)
	}
	updated, err := s.users.UpdateStatus(ctx, user.ID, domain.UserStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("approve %s: %w", email, err)
	}
	s.audit.LogAction(ctx, 0, "promote", "user", fmt.Sprint(user.ID), "admin", email)
	return updated, nil
}
