package webhook

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/redhat-data-and-ai/teams-notifier/internal/config"
	"github.com/redhat-data-and-ai/teams-notifier/internal/dispatch"
	apperrors "github.com/redhat-data-and-ai/teams-notifier/internal/errors"
	"github.com/redhat-data-and-ai/teams-notifier/internal/events"
	"github.com/redhat-data-and-ai/teams-notifier/internal/logging"
	"github.com/redhat-data-and-ai/teams-notifier/internal/utils"
)

// NotificationHandler receives GitHub and GitLab webhooks and relays them
// to Teams through the dispatch coordinator
type NotificationHandler struct {
	config      *config.Config
	coordinator *dispatch.Coordinator
	logger      *logging.Logger
}

// NewNotificationHandler creates the webhook handler
func NewNotificationHandler(cfg *config.Config, coordinator *dispatch.Coordinator, logger *logging.Logger) *NotificationHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	logger.Info("GitHub webhook security: %s", cfg.GitHubSecurityMode())
	logger.Info("GitLab webhook security: %s", cfg.GitLabSecurityMode())
	logger.Info("Notification mode: %s", cfg.NotifyMode())

	return &NotificationHandler{
		config:      cfg,
		coordinator: coordinator,
		logger:      logger,
	}
}

// HandleGitHub processes POST /webhook/github
func (h *NotificationHandler) HandleGitHub(c *fiber.Ctx) error {
	body := c.Body()

	if !VerifyGitHubSignature(body, c.Get(utils.HeaderGitHubSignature), h.config.GitHub.WebhookSecret) {
		h.logger.Zap().Warn("Rejected GitHub webhook with invalid signature",
			zap.String("delivery", c.Get(utils.HeaderGitHubDelivery)),
			zap.String("remote_ip", c.IP()))
		return apperrors.NewSignatureError(string(events.SourceGitHub))
	}

	if c.Get(utils.HeaderGitHubEvent) == utils.GitHubPingEvent {
		h.logger.Info("Received GitHub ping")
		return c.JSON(dispatch.Ignored(events.SourceGitHub, utils.GitHubPingEvent))
	}

	return h.process(c, events.SourceGitHub, body)
}

// HandleGitLab processes POST /webhook/gitlab
func (h *NotificationHandler) HandleGitLab(c *fiber.Ctx) error {
	if !VerifyGitLabToken(c.Get(utils.HeaderGitLabToken), h.config.GitLab.WebhookToken) {
		h.logger.Zap().Warn("Rejected GitLab webhook with invalid token",
			zap.String("event", c.Get(utils.HeaderGitLabEvent)),
			zap.String("remote_ip", c.IP()))
		return apperrors.NewSignatureError(string(events.SourceGitLab))
	}

	return h.process(c, events.SourceGitLab, c.Body())
}

func (h *NotificationHandler) process(c *fiber.Ctx, source events.Source, body []byte) error {
	result, err := h.coordinator.Process(c.UserContext(), source, body)
	if err != nil {
		if errors.Is(err, events.ErrMalformedPayload) {
			return apperrors.NewPayloadError(string(source), err)
		}
		return apperrors.NewErrorWithCause(apperrors.ErrInternalServer, "Failed to process webhook", err)
	}

	return c.JSON(result)
}
