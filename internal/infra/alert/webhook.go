package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"firegate/internal/core/domain"
)

// Config holds alert webhook configuration.
type Config struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Webhook posts alert payloads to a configured HTTP endpoint. Delivery
// failures are logged, never raised: alerting must not take down ingestion.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhook creates a webhook alerter. A zero timeout defaults to 10s.
func NewWebhook(cfg Config, logger *slog.Logger) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type payload struct {
	Text      string    `json:"text"`
	Severity  string    `json:"severity"`
	ErrorID   string    `json:"error_id"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert delivers one error record to the webhook.
func (w *Webhook) Alert(ctx context.Context, rec domain.ErrorRecord) {
	if w.url == "" {
		w.logger.Warn("alert webhook not configured, dropping alert",
			"error_id", rec.ErrorID,
			"severity", rec.Severity)
		return
	}

	body, err := json.Marshal(payload{
		Text:      fmt.Sprintf("[%s] %s: %s", rec.Severity, rec.ErrorType, rec.Message),
		Severity:  string(rec.Severity),
		ErrorID:   rec.ErrorID,
		Source:    rec.Source,
		Message:   rec.Message,
		Timestamp: rec.Timestamp,
	})
	if err != nil {
		w.logger.Error("failed to marshal alert payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		w.logger.Error("failed to build alert request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Error("failed to deliver alert", "error", err, "error_id", rec.ErrorID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.logger.Error("alert webhook rejected payload",
			"status", resp.StatusCode,
			"error_id", rec.ErrorID)
		return
	}

	w.logger.Info("alert delivered", "error_id", rec.ErrorID, "severity", rec.Severity)
}
