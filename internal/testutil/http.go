package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/ideahub/internal/app/system/identity"
)

// TestUser represents caller data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
}

// Caller converts the test user to the identity the handlers expect.
func (u TestUser) Caller() identity.Caller {
	return identity.Caller{UserID: u.ID, DisplayName: u.Name, Email: u.Email}
}

// Alice, Bob and Carol are stock callers for handler and service tests.
func Alice() TestUser { return TestUser{ID: "user-alice", Name: "Alice", Email: "alice@test.com"} }
func Bob() TestUser   { return TestUser{ID: "user-bob", Name: "Bob", Email: "bob@test.com"} }
func Carol() TestUser { return TestUser{ID: "user-carol", Name: "Carol", Email: "carol@test.com"} }

// WithUser adds a caller to the request context for testing authenticated handlers.
// This bypasses the bearer middleware and injects the caller directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return r.WithContext(identity.WithCaller(r.Context(), user.Caller()))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a caller in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewJSONRequest creates an authenticated request whose body is body encoded as JSON.
func NewJSONRequest(method, target string, body any, user TestUser) *http.Request {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return WithUser(req, user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface{ Fatalf(string, ...any) }, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, r.Body.String())
	}
}
