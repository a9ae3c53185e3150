package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notes-api/auth"
	"notes-api/db"
	"notes-api/service"
)

// newTestRouter serves the API over a memory store holding the default seed:
// admin (id 1, admin123) and user (id 2, user123), each owning one note.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := db.NewMemoryStore()
	seed, err := db.LoadSeed("")
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if _, err := db.ApplySeed(store, seed, auth.PlainScheme{}.Hash); err != nil {
		t.Fatalf("apply seed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewManager(auth.Options{Store: store, Secret: "handlers-test", TTL: time.Hour, Logger: logger})
	return NewRouter(New(service.New(store, sessions, logger), logger), sessions)
}

// doRequest sends body as JSON, authenticating with token when it is set.
func doRequest(router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		jsonBody, _ := json.Marshal(b)
		buf = bytes.NewBuffer(jsonBody)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", rr.Body.String(), err)
	}
	return response
}

func loginAs(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()
	rr := doRequest(router, "POST", "/api/login", map[string]string{"email": email, "password": password}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Login as %s failed: %d %s", email, rr.Code, rr.Body.String())
	}
	token, _ := decodeBody(t, rr)["token"].(string)
	if token == "" {
		t.Fatalf("Login response missing token")
	}
	return token
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if status := rr.Code; status != want {
		t.Errorf("Handler returned wrong status code: got %v want %v (body %s)", status, want, rr.Body.String())
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	expectStatus(t, rr, status)
	if got := decodeBody(t, rr)["error"]; got != msg {
		t.Errorf("Wrong error message: got %v want %q", got, msg)
	}
}
