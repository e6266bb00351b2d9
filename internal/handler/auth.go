package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/httpx"
	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
	"github.com/aryan0dhankhar/ordertrack/internal/security/middleware"
	"github.com/aryan0dhankhar/ordertrack/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth handler. secureCookies marks the session
// cookie Secure and should be on everywhere except local development.
func NewAuthHandler(authService *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// UserResponse wraps the identity returned by the auth endpoints
type UserResponse struct {
	User    domain.Identity `json:"user"`
	Message string          `json:"message,omitempty"`
}

// MeResponse is returned by GET /api/auth/me
type MeResponse struct {
	User MeUser `json:"user"`
}

// MeUser is the session account without credentials
type MeUser struct {
	ID     int64             `json:"id"`
	Email  string            `json:"email"`
	Role   domain.Role       `json:"role"`
	Status domain.UserStatus `json:"status"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.logger.Info("registration failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		httpx.Error(w, r, h.logger, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, UserResponse{
		User:    user.Identity(),
		Message: "Registration request submitted. Please wait for approval.",
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(result.Token, h.authService.SessionTTL(), h.secureCookies))
	httpx.JSON(w, http.StatusOK, UserResponse{
		User:    result.User.Identity(),
		Message: "Login successful",
	})
}

// Logout handles POST /api/auth/logout. It always clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		h.logger.Warn("logout could not revoke session", slog.String("error", err.Error()))
	}
	http.SetCookie(w, auth.ClearSessionCookie(h.secureCookies))
	httpx.Message(w, http.StatusOK, "Logout successful")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		httpx.Error(w, r, h.logger, service.ErrTokenRequired)
		return
	}
	httpx.JSON(w, http.StatusOK, MeResponse{User: MeUser{
		ID:     user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	}})
}
