package webhook

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/redhat-data-and-ai/teams-notifier/internal/config"
	"github.com/redhat-data-and-ai/teams-notifier/internal/recipients"
	"github.com/redhat-data-and-ai/teams-notifier/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	config    *config.Config
	registry  *recipients.Registry
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, registry *recipients.Registry) *HealthHandler {
	return &HealthHandler{
		config:    cfg,
		registry:  registry,
		startTime: time.Now(),
	}
}

// HandleHealth returns liveness plus a timestamp
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	uptime := time.Since(h.startTime)

	health := fiber.Map{
		"status":          "healthy",
		"service":         utils.ServiceName,
		"version":         utils.Version,
		"uptime_seconds":  int64(uptime.Seconds()),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"github_security": h.config.GitHubSecurityMode(),
		"gitlab_security": h.config.GitLabSecurityMode(),
		"notify_mode":     h.config.NotifyMode(),
	}

	return c.JSON(health)
}

// HandleReady returns readiness status for Kubernetes
func (h *HealthHandler) HandleReady(c *fiber.Ctx) error {
	users := 0
	if h.registry != nil {
		users = h.registry.Len()
	}

	ready := fiber.Map{
		"ready":             true,
		"service":           utils.ServiceName,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"users":             users,
		"github_secret_set": h.config.HasGitHubSecret(),
		"gitlab_token_set":  h.config.HasGitLabToken(),
	}

	if users == 0 {
		ready["ready"] = false
		ready["reason"] = "No users configured"
		return c.Status(fiber.StatusServiceUnavailable).JSON(ready)
	}

	return c.JSON(ready)
}
