package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firegate/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAlertDeliversPayload(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhook(Config{WebhookURL: srv.URL}, testLogger())
	w.Alert(context.Background(), domain.ErrorRecord{
		ErrorID:   "ERR_1_0001",
		ErrorType: "connectivity",
		Message:   "connection refused",
		Severity:  domain.SeverityCritical,
		Source:    "arcgis_api",
		Timestamp: time.Now(),
	})

	if got.ErrorID != "ERR_1_0001" || got.Severity != string(domain.SeverityCritical) || got.Source != "arcgis_api" {
		t.Errorf("payload = %+v", got)
	}
	if got.Text != "[critical] connectivity: connection refused" {
		t.Errorf("payload text = %q", got.Text)
	}
}

func TestAlertFailureIsAbsorbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(Config{WebhookURL: srv.URL}, testLogger())
	// Must not panic or propagate the failure.
	w.Alert(context.Background(), domain.ErrorRecord{ErrorID: "ERR_1_0002"})
}

func TestAlertWithoutURLIsDropped(t *testing.T) {
	w := NewWebhook(Config{}, testLogger())
	w.Alert(context.Background(), domain.ErrorRecord{ErrorID: "ERR_1_0003"})
}
