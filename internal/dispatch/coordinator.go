package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redhat-data-and-ai/teams-notifier/internal/cards"
	"github.com/redhat-data-and-ai/teams-notifier/internal/delivery"
	"github.com/redhat-data-and-ai/teams-notifier/internal/events"
	"github.com/redhat-data-and-ai/teams-notifier/internal/logging"
	"github.com/redhat-data-and-ai/teams-notifier/internal/recipients"
)

// Reasons reported when nothing is delivered
const (
	ReasonUnrecognized = "unrecognized event"
	ReasonNoRecipients = "no configured recipients"
)

// Outcome is the delivery result for one recipient
type Outcome struct {
	User         string          `json:"user"`
	Role         recipients.Role `json:"role"`
	MatchedAlias string          `json:"matchedAlias,omitempty"`
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
}

// Result summarizes how one inbound webhook was handled
type Result struct {
	EventID    string        `json:"event_id"`
	Processed  bool          `json:"processed"`
	Source     events.Source `json:"source"`
	Kind       events.Kind   `json:"kind,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Recipients []Outcome     `json:"recipients"`
}

// Coordinator runs classification, resolution, composition and delivery for
// one event at a time. It holds no per-request state.
type Coordinator struct {
	registry *recipients.Registry
	sender   delivery.Sender
	options  recipients.Options
	logger   *logging.Logger
}

// NewCoordinator creates a coordinator over a read-only registry
func NewCoordinator(registry *recipients.Registry, sender delivery.Sender, options recipients.Options, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Coordinator{
		registry: registry,
		sender:   sender,
		options:  options,
		logger:   logger,
	}
}

// Process classifies a raw body and notifies every resolved recipient. The
// only error is a malformed payload; everything else is reported in Result.
func (c *Coordinator) Process(ctx context.Context, source events.Source, body []byte) (*Result, error) {
	eventID := uuid.NewString()

	event, err := events.Normalize(source, body)
	if err != nil {
		eventsTotal.WithLabelValues(string(source), "", outcomeInvalid).Inc()
		c.logger.EventWarn(eventID, string(source), "Rejected webhook payload", zap.Error(err))
		return nil, err
	}

	if event == nil {
		eventsTotal.WithLabelValues(string(source), "", outcomeUnrecognized).Inc()
		c.logger.EventInfo(eventID, string(source), "Ignoring unrecognized event")
		return &Result{
			EventID:    eventID,
			Source:     source,
			Reason:     ReasonUnrecognized,
			Recipients: []Outcome{},
		}, nil
	}

	return c.Dispatch(ctx, eventID, event), nil
}

// Dispatch resolves and notifies recipients for an already normalized event
func (c *Coordinator) Dispatch(ctx context.Context, eventID string, event *events.Event) *Result {
	source := string(event.Source)
	result := &Result{
		EventID:    eventID,
		Source:     event.Source,
		Kind:       event.Kind,
		Recipients: []Outcome{},
	}

	c.logger.EventInfo(eventID, source, "Classified webhook event",
		zap.String("kind", string(event.Kind)),
		zap.String("repo", event.RepoName),
		zap.String("pr_url", event.PRURL))

	matches := c.registry.Resolve(event, c.options)
	if len(matches) == 0 {
		eventsTotal.WithLabelValues(source, string(event.Kind), outcomeNoRecipients).Inc()
		c.logger.EventInfo(eventID, source, "No configured recipients for event",
			zap.String("kind", string(event.Kind)),
			zap.String("pr_author", event.PRAuthorIdentity))
		result.Reason = ReasonNoRecipients
		return result
	}

	// Sequential in recipient order; a failed send never stops the next one
	for _, match := range matches {
		result.Recipients = append(result.Recipients, c.deliver(ctx, eventID, event, match))
	}

	result.Processed = true
	eventsTotal.WithLabelValues(source, string(event.Kind), outcomeProcessed).Inc()

	delivered := 0
	for _, o := range result.Recipients {
		if o.Success {
			delivered++
		}
	}
	c.logger.EventInfo(eventID, source, "Finished event dispatch",
		zap.String("kind", string(event.Kind)),
		zap.Int("recipients", len(result.Recipients)),
		zap.Int("delivered", delivered))

	return result
}

// Ignored builds the result for a delivery that is acknowledged but never
// classified, such as a GitHub ping.
func Ignored(source events.Source, reason string) *Result {
	eventsTotal.WithLabelValues(string(source), "", outcomeIgnored).Inc()
	return &Result{
		EventID:    uuid.NewString(),
		Source:     source,
		Reason:     reason,
		Recipients: []Outcome{},
	}
}

func (c *Coordinator) deliver(ctx context.Context, eventID string, event *events.Event, match recipients.Match) Outcome {
	outcome := Outcome{
		User:         match.User.Name,
		Role:         match.Role,
		MatchedAlias: match.MatchedAlias,
	}
	fields := []zap.Field{
		zap.String("user", match.User.Name),
		zap.String("role", string(match.Role)),
		zap.String("endpoint", delivery.RedactURL(match.User.TeamsWebhookURL)),
	}

	if err := ctx.Err(); err != nil {
		outcome.Error = fmt.Sprintf("request cancelled: %v", err)
		deliveryTotal.WithLabelValues(string(match.Role), "cancelled").Inc()
		c.logger.EventWarn(eventID, string(event.Source), "Skipping delivery for cancelled request", fields...)
		return outcome
	}

	card, err := cards.Compose(event, match.Role, match.MatchedAlias)
	if err != nil {
		outcome.Error = err.Error()
		deliveryTotal.WithLabelValues(string(match.Role), "error").Inc()
		c.logger.EventError(eventID, string(event.Source), "Failed to compose card", err, fields...)
		return outcome
	}

	if err := c.sender.Send(ctx, card, match.User.TeamsWebhookURL); err != nil {
		outcome.Error = err.Error()
		deliveryTotal.WithLabelValues(string(match.Role), "error").Inc()
		c.logger.EventError(eventID, string(event.Source), "Teams delivery failed", err, fields...)
		return outcome
	}

	outcome.Success = true
	deliveryTotal.WithLabelValues(string(match.Role), "success").Inc()
	c.logger.EventInfo(eventID, string(event.Source), "Delivered Teams notification", fields...)
	return outcome
}
