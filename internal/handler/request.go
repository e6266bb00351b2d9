package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

const maxBodyBytes = 1 << 20

// ErrInvalidInput reports a malformed request body
var ErrInvalidInput = domain.NewValidationError("Invalid input", nil)

// decodeJSON reads a single JSON document into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return ErrInvalidInput
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrInvalidInput
	}
	return nil
}

// pathID parses the {id} wildcard as a positive integer
func pathID(r *http.Request, field string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("Invalid "+field, map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. Absent values yield 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("Invalid "+name, map[string]string{name: "must be an integer"})
	}
	return n, nil
}
