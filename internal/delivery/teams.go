package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/redhat-data-and-ai/teams-notifier/internal/cards"
	apperrors "github.com/redhat-data-and-ai/teams-notifier/internal/errors"
	"github.com/redhat-data-and-ai/teams-notifier/internal/logging"
)

const (
	// DefaultTimeout bounds a single webhook POST
	DefaultTimeout = 10 * time.Second
	userAgent      = "teams-notifier/v1"
	// maxErrorBody caps how much of a failed response is kept for logs
	maxErrorBody = 512
)

// Sender delivers a card to a chat webhook endpoint
type Sender interface {
	Send(ctx context.Context, card *cards.MessageCard, endpoint string) error
}

// TeamsSender posts MessageCards to Teams incoming webhooks. Failures are
// returned to the caller and never retried.
type TeamsSender struct {
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTeamsSender creates a sender with the given per-request timeout
func NewTeamsSender(logger *logging.Logger, timeout time.Duration) *TeamsSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TeamsSender{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send marshals the card and POSTs it. Any non-2xx status is a failure.
func (s *TeamsSender) Send(ctx context.Context, card *cards.MessageCard, endpoint string) error {
	if card == nil {
		return apperrors.NewDeliveryError(0, fmt.Errorf("nil card"))
	}

	body, err := json.Marshal(card)
	if err != nil {
		return apperrors.NewDeliveryError(0, fmt.Errorf("marshal card: %w", err))
	}

	return s.doPost(ctx, endpoint, body)
}

func (s *TeamsSender) doPost(ctx context.Context, endpoint string, body []byte) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewDeliveryError(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		deliveryDuration.WithLabelValues("error").Observe(duration)
		s.logger.Zap().Warn("Teams webhook request failed",
			zap.String("endpoint", RedactURL(endpoint)),
			zap.Error(err))
		return apperrors.NewDeliveryError(0, fmt.Errorf("post to %s: %w", RedactURL(endpoint), scrubURLError(err)))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		deliveryDuration.WithLabelValues("success").Observe(duration)
		return nil
	}

	deliveryDuration.WithLabelValues("error").Observe(duration)
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	s.logger.Zap().Warn("Teams webhook returned non-2xx status",
		zap.String("endpoint", RedactURL(endpoint)),
		zap.Int("status_code", resp.StatusCode),
		zap.ByteString("response", snippet))

	return apperrors.NewDeliveryError(resp.StatusCode, fmt.Errorf("webhook returned HTTP %d", resp.StatusCode))
}

// scrubURLError drops the raw URL that net/http embeds in transport errors.
// Teams webhook URLs carry their credential in the path.
func scrubURLError(err error) error {
	if urlErr, ok := err.(*url.Error); ok {
		return urlErr.Err
	}
	return err
}

// RedactURL masks credentials in a webhook URL for safe logging. Teams
// webhook paths are secrets, so only the scheme and host survive.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "<invalid-url>"
	}
	if u.Path == "" || u.Path == "/" {
		if u.RawQuery == "" {
			return u.Scheme + "://" + u.Host
		}
		return u.Scheme + "://" + u.Host + "?REDACTED"
	}
	return u.Scheme + "://" + u.Host + "/REDACTED"
}
