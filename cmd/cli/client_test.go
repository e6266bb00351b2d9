package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/ordertrack/internal/httpx"
	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
)

func testClient(t *testing.T, h http.Handler) *apiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &apiClient{
		baseURL:     srv.URL,
		sessionPath: filepath.Join(t.TempDir(), "session"),
		http:        srv.Client(),
	}
}

func TestClientKeepsSessionCookie(t *testing.T) {
	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, auth.SessionCookie("tok-1", time.Hour, false))
		httpx.Message(w, http.StatusOK, "Login successful")
	})
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		seen = auth.TokenFromRequest(r)
		httpx.JSON(w, http.StatusOK, []any{})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, auth.ClearSessionCookie(false))
		httpx.Message(w, http.StatusOK, "Logout successful")
	})
	c := testClient(t, mux)

	require.NoError(t, c.do("POST", "/auth/login", map[string]string{"email": "a@x.com"}, nil))
	assert.Equal(t, "tok-1", c.loadSession())

	var projects []any
	require.NoError(t, c.do("GET", "/projects", nil, &projects))
	assert.Equal(t, "tok-1", seen)

	require.NoError(t, c.do("POST", "/auth/logout", nil, nil))
	assert.Empty(t, c.loadSession())
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorBody{
			Message: "Validation failed",
			Errors:  map[string]string{"title": "cannot be blank"},
		})
	}))

	err := c.do("POST", "/orders", map[string]string{}, nil)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Contains(t, err.Error(), "title: cannot be blank")
}
