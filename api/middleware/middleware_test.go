package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/rs/zerolog"
)

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	h := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	h := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/settings", nil))

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if entry["message"] != "request.complete" {
		t.Fatalf("unexpected message %v", entry["message"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", entry["status"])
	}
	if entry["path"] != "/settings" {
		t.Fatalf("expected path field, got %v", entry["path"])
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Fatalf("expected error code in body, got %s", rec.Body.String())
	}
}
