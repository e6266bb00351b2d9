package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
)

// apiClient talks to the HTTP API and persists the session cookie between
// invocations
type apiClient struct {
	baseURL     string
	sessionPath string
	http        *http.Client
}

// apiError is a non-2xx answer carrying the server's message
type apiError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *apiError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		parts = append(parts, field+": "+reason)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, ", "))
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL:     apiURL(),
		sessionPath: sessionFile(),
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

func apiURL() string {
	if url := os.Getenv("ORDERTRACK_API"); url != "" {
		return strings.TrimRight(url, "/")
	}
	return "http://localhost:8080/api"
}

func sessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ordertrack", "session")
}

// do sends body as JSON and decodes a 2xx answer into out
func (c *apiClient) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.loadSession(); token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name != auth.CookieName {
			continue
		}
		if ck.MaxAge < 0 || ck.Value == "" {
			c.clearSession()
		} else if err := c.saveSession(ck.Value); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
			apiErr.Fields = payload.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) saveSession(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.sessionPath, []byte(token), 0o600)
}

func (c *apiClient) loadSession() string {
	data, err := os.ReadFile(c.sessionPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *apiClient) clearSession() {
	_ = os.Remove(c.sessionPath)
}
