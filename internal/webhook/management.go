package webhook

import (
	"github.com/gofiber/fiber/v2"

	"github.com/redhat-data-and-ai/teams-notifier/internal/config"
	"github.com/redhat-data-and-ai/teams-notifier/internal/events"
	"github.com/redhat-data-and-ai/teams-notifier/internal/recipients"
	"github.com/redhat-data-and-ai/teams-notifier/internal/utils"
)

// ManagementHandler handles management and introspection endpoints
type ManagementHandler struct {
	config   *config.Config
	registry *recipients.Registry
}

// NewManagementHandler creates a new management handler
func NewManagementHandler(cfg *config.Config, registry *recipients.Registry) *ManagementHandler {
	return &ManagementHandler{
		config:   cfg,
		registry: registry,
	}
}

// HandleUsers lists the registered users. Webhook URLs are credentials and
// are never returned.
func (h *ManagementHandler) HandleUsers(c *fiber.Ctx) error {
	users := h.registry.Users()

	list := make([]fiber.Map, 0, len(users))
	githubCount, gitlabCount := 0, 0
	for _, user := range users {
		entry := fiber.Map{
			"name":          user.Name,
			"alias_count":   len(user.MentionAliases),
			"mention_names": user.MentionAliases,
		}
		if name := user.GitHubUsername(); name != "" {
			entry["github"] = name
			githubCount++
		}
		if user.GitLab != nil {
			gitlab := fiber.Map{}
			if name := user.GitLabUsername(); name != "" {
				gitlab["username"] = name
			}
			if id := user.GitLabUserID(); id != "" {
				gitlab["user_id"] = id
			}
			entry["gitlab"] = gitlab
			gitlabCount++
		}
		list = append(list, entry)
	}

	return c.JSON(fiber.Map{
		"total_users":  len(users),
		"github_users": githubCount,
		"gitlab_users": gitlabCount,
		"users":        list,
	})
}

// HandleSystemInfo returns system information and capabilities
func (h *ManagementHandler) HandleSystemInfo(c *fiber.Ctx) error {
	kinds := fiber.Map{}
	for _, source := range []events.Source{events.SourceGitHub, events.SourceGitLab} {
		kinds[string(source)] = events.Kinds(source)
	}

	return c.JSON(fiber.Map{
		"service":          utils.ServiceName,
		"version":          utils.Version,
		"github_security":  h.config.GitHubSecurityMode(),
		"gitlab_security":  h.config.GitLabSecurityMode(),
		"notify_mode":      h.config.NotifyMode(),
		"delivery_timeout": h.config.Delivery.Timeout.String(),
		"metrics_enabled":  h.config.Metrics.Enabled,
		"registered_users": h.registry.Len(),
		"event_kinds":      kinds,
		"endpoints":        h.endpoints(),
	})
}

func (h *ManagementHandler) endpoints() []string {
	endpoints := []string{
		"/health",
		"/ready",
		"/webhook/github",
		"/webhook/gitlab",
		"/api/users",
		"/api/system",
	}
	if h.config.Metrics.Enabled {
		endpoints = append(endpoints, "/metrics")
	}
	return endpoints
}
