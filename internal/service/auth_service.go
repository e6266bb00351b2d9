package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/ordertrack/internal/security/audit"
	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
)

// DefaultMinPasswordLength applies when the configured minimum is unset
const DefaultMinPasswordLength = 6

// Authentication failures surfaced to clients
var (
	ErrInvalidCredentials = domain.NewAuthenticationError("Invalid credentials")
	ErrTokenRequired      = domain.NewAuthenticationError("Access token required")
	ErrInvalidToken       = domain.NewAuthenticationError("Invalid token")
	ErrSessionExpired     = domain.NewAuthenticationError("Session expired")
	ErrSessionRevoked     = domain.NewAuthenticationError("Session revoked")
)

// Credentials is the register and login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the issued session
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles registration, login and session resolution
type AuthService struct {
	users       domain.UserRepository
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenManager
	revoker     auth.Revoker
	audit       *audit.Logger
	minPassword int
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service. A nil revoker means
// tokens stay valid until expiry.
func NewAuthService(
	users domain.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	revoker auth.Revoker,
	auditLog *audit.Logger,
	minPassword int,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if revoker == nil {
		revoker = auth.NopRevoker{}
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}

	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		revoker:     revoker,
		audit:       auditLog,
		minPassword: minPassword,
		logger:      logger,
	}
}

// SessionTTL is the lifetime of issued session cookies
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// Register creates a pending account. No session is issued until an
// administrator approves it.
func (s *AuthService) Register(ctx context.Context, in Credentials) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(0, 255), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(s.minPassword, 72)),
	)
	if err != nil {
		return nil, fieldErrors(err)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		Status:       domain.UserStatusPending,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.LogRegistration(ctx, user.ID, user.Email)
	metrics.ObserveRegistration()
	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Login verifies credentials and the approval gate, then issues a session
func (s *AuthService) Login(ctx context.Context, in Credentials) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
	if err != nil {
		return nil, fieldErrors(err)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Info("login attempt with unknown email", slog.String("email", in.Email))
			s.audit.LogLogin(ctx, 0, in.Email, "invalid_credentials")
			metrics.ObserveLogin("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Info("login failed with wrong password", slog.Int64("user_id", user.ID))
		s.audit.LogLogin(ctx, user.ID, user.Email, "invalid_credentials")
		metrics.ObserveLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if err := LoginGate(user); err != nil {
		s.audit.LogLogin(ctx, user.ID, user.Email, string(user.Status))
		metrics.ObserveLogin(string(user.Status))
		return nil, err
	}

	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.audit.LogLogin(ctx, user.ID, user.Email, "success")
	metrics.ObserveLogin("success")
	s.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate resolves a session token to a live, approved account
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error) {
	if token == "" {
		return nil, nil, ErrTokenRequired
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrSessionRevoked
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	if err := LoginGate(user); err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the session behind token when it is still valid. Invalid
// or missing tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Error("failed to revoke token",
			slog.Int64("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.audit.LogAction(ctx, claims.UserID, "logout", "session", "", "success", "")
	return nil
}
