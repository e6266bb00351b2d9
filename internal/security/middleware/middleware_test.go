package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
	"github.com/aryan0dhankhar/ordertrack/internal/security/ratelimit"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubAuthenticator struct {
	user *domain.User
	err  error
	got  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, *auth.Claims, error) {
	s.got = token
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.user, &auth.Claims{UserID: s.user.ID}, nil
}

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestSessionMiddleware(t *testing.T) {
	authn := &stubAuthenticator{user: &domain.User{ID: 7, Role: domain.RoleUser}}
	var seen *domain.User
	h := SessionMiddleware(authn, discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		assert.Equal(t, int64(7), ClaimsFromContext(r.Context()).UserID)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", authn.got)
	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.ID)

	authn.err = domain.NewAuthenticationError("Access token required")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Access token required"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domain.RoleAdmin, nil)(http.HandlerFunc(ok))

	withUser := func(u *domain.User) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		return r.WithContext(context.WithValue(r.Context(), UserContextKey{}, u))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(&domain.User{ID: 1, Role: domain.RoleAdmin}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(&domain.User{ID: 2, Role: domain.RoleUser}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Admin access required"}`, rec.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()
	h := RateLimitMiddleware(limiter, discard)(http.HandlerFunc(ok))

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.10:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestValidateJSONContentType(t *testing.T) {
	h := ValidateJSONContentType(discard)(http.HandlerFunc(ok))

	cases := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form", http.MethodPatch, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing", http.MethodPost, `{}`, "", http.StatusUnsupportedMediaType},
		{"empty body", http.MethodPost, ``, "", http.StatusOK},
		{"get", http.MethodGet, ``, "text/plain", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(tc.method, "/api/orders", strings.NewReader(tc.body))
			if tc.contentType != "" {
				r.Header.Set("Content-Type", tc.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
