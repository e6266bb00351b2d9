package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/httpx"
	"github.com/aryan0dhankhar/ordertrack/internal/security/audit"
	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
	"github.com/aryan0dhankhar/ordertrack/internal/security/ratelimit"
)

type UserContextKey struct{}
type ClaimsContextKey struct{}

// Authenticator resolves a session token to the account behind it
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error)
}

// SessionMiddleware requires a valid session cookie and stores the user and
// claims in the request context.
func SessionMiddleware(authn Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, claims, err := authn.Authenticate(r.Context(), auth.TokenFromRequest(r))
			if err != nil {
				log.Debug("session rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				httpx.Error(w, r, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey{}, user)
			ctx = context.WithValue(ctx, ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole answers 403 unless the session user holds role. It must run
// after SessionMiddleware.
func RequireRole(role domain.Role, auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || user.Role != role {
				var userID int64
				if user != nil {
					userID = user.ID
				}
				if auditLog != nil {
					auditLog.LogDenied(r.Context(), userID, "requires role "+string(role)+" for "+r.Method+" "+r.URL.Path)
				}
				httpx.Error(w, r, nil, domain.NewAuthorizationError("Admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits requests per client IP
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !limiter.Allow(ip) {
				log.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.RetryAfter().Seconds())))
				httpx.Message(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every mutating request together with the session
// user and the resulting status code.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			var userID int64
			if u := UserFromContext(r.Context()); u != nil {
				userID = u.ID
			}
			auditLog.LogAction(r.Context(), userID, r.Method, r.URL.Path, r.PathValue("id"),
				strconv.Itoa(rec.status), "")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// ClientIP returns the host part of the peer address
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserFromContext returns the session user or nil
func UserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(UserContextKey{}).(*domain.User); ok {
		return u
	}
	return nil
}

// ClaimsFromContext returns the session claims or nil
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(ClaimsContextKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}
