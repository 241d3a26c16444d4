package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// WebhookSink POSTs level-change events to the external notification
// service's webhook endpoint.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a WebhookSink for the given endpoint.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendLevelChange delivers the event. Non-2xx responses are errors so the
// worker can requeue.
func (s *WebhookSink) SendLevelChange(ctx context.Context, event LevelChange) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSink is used when no webhook is configured: events are logged and
// dropped. Keeps dev environments working without an external sink.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "notify_log_sink").Logger()}
}

// SendLevelChange logs the event.
func (s *LogSink) SendLevelChange(_ context.Context, event LevelChange) error {
	s.log.Info().
		Str("candidate_id", event.CandidateID.String()).
		Str("new_level", string(event.NewLevel)).
		Int("score", event.Score).
		Msg("Level change (no webhook configured)")
	return nil
}
