package presentation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPingHandler_ReturnsMessage(t *testing.T) {
	handler := NewPingHandler(time.Now().Add(-time.Second))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var resp pingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Pong!" {
		t.Errorf("expected message %q, got %q", "Pong!", resp.Message)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if resp.UptimeMs < 1000 {
		t.Errorf("expected uptime of at least 1000ms, got %d", resp.UptimeMs)
	}
}
