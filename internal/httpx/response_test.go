package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind domain.Kind
		want int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindConflict, http.StatusBadRequest},
		{domain.KindAuthentication, http.StatusUnauthorized},
		{domain.KindAuthorization, http.StatusForbidden},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.kind))
	}
}

func TestError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

	rec := httptest.NewRecorder()
	Error(rec, r, nil, domain.NewValidationError("Invalid page", map[string]string{"page": "is out of range"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Invalid page","errors":{"page":"is out of range"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, r, nil, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())
}
