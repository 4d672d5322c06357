package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// defaultTimeout bounds each webhook POST. Lambda's own invocation timeout is
// the only other backstop, which is too late to be useful.
const defaultTimeout = 10 * time.Second

// maxResponseBodyRead limits how much of the webhook response is read for
// error reporting.
const maxResponseBodyRead = 4096

// Sender posts messages to Slack incoming webhook URLs. One POST per call,
// no retries; the fan-out layer decides what to do with failures.
type Sender struct {
	httpClient *http.Client
}

// NewSender creates a Sender with a bounded-timeout HTTP client.
func NewSender() *Sender {
	return &Sender{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewSenderWithClient creates a Sender using the supplied client. Used by
// tests and callers that need custom transport settings.
func NewSenderWithClient(client *http.Client) *Sender {
	return &Sender{httpClient: client}
}

// Post sends one message to the webhook URL as a JSON POST. Any non-2xx
// status, Slack soft failure, or transport error is logged with the raw
// response payload and returned.
func (s *Sender) Post(ctx context.Context, webhookURL string, message Message) error {
	logger := zerolog.Ctx(ctx)

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("webhook_url", webhookURL).Msg("Webhook request failed")
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyRead))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error().
			Int("status", resp.StatusCode).
			Str("webhook_url", webhookURL).
			Str("response", string(respBody)).
			Msg("Webhook returned non-success status")
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	// Slack incoming webhooks can report errors with HTTP 200 and a plain
	// text body other than "ok".
	if err := validateWebhookResponse(respBody); err != nil {
		logger.Error().
			Str("webhook_url", webhookURL).
			Str("response", string(respBody)).
			Msg("Webhook reported an error body")
		return err
	}

	logger.Info().Str("webhook_url", webhookURL).Str("response", string(respBody)).Msg("Webhook delivered")
	return nil
}

func validateWebhookResponse(body []byte) error {
	text := strings.TrimSpace(string(body))
	if text == "" || text == "ok" {
		return nil
	}

	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err == nil {
		if ok, exists := resp["ok"]; exists {
			if okBool, isBool := ok.(bool); isBool && !okBool {
				if msg, _ := resp["error"].(string); msg != "" {
					return fmt.Errorf("webhook API error: %s", msg)
				}
				return fmt.Errorf("webhook API error: unknown error")
			}
		}
		return nil
	}

	switch text {
	case "no_text", "invalid_payload", "channel_not_found", "channel_is_archived", "too_many_attachments":
		return fmt.Errorf("webhook API error: %s", text)
	}
	return nil
}
