package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/redhat-data-and-ai/teams-notifier/internal/cards"
	"github.com/redhat-data-and-ai/teams-notifier/internal/config"
	"github.com/redhat-data-and-ai/teams-notifier/internal/dispatch"
	apperrors "github.com/redhat-data-and-ai/teams-notifier/internal/errors"
	"github.com/redhat-data-and-ai/teams-notifier/internal/logging"
	"github.com/redhat-data-and-ai/teams-notifier/internal/recipients"
)

// createTestApp mirrors the production error handling so AppErrors render
// with their status codes
func createTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          apperrors.NewHandler(logging.NewNopLogger()).FiberErrorHandler(),
	})
}

func createTestConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "3000"},
		Delivery: config.DeliveryConfig{Timeout: 10 * time.Second},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

func testUsers() []config.User {
	return []config.User{
		{
			Name:            "alice",
			TeamsWebhookURL: "https://teams.example.com/alice",
			GitHub:          &config.GitHubIdentity{Username: "alice"},
			MentionAliases:  []string{"frontend-team"},
		},
		{
			Name:            "bob",
			TeamsWebhookURL: "https://teams.example.com/bob",
			GitLab:          &config.GitLabIdentity{Username: "bob", UserID: 999},
			MentionAliases:  []string{"bob-team"},
		},
	}
}

type sentCard struct {
	endpoint string
	card     *cards.MessageCard
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentCard
}

func (s *recordingSender) Send(_ context.Context, card *cards.MessageCard, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentCard{endpoint: endpoint, card: card})
	return nil
}

// setupNotificationApp wires the full webhook stack with a recording sender
func setupNotificationApp(cfg *config.Config) (*fiber.App, *recordingSender) {
	sender := &recordingSender{}
	registry := recipients.NewRegistry(testUsers())
	coordinator := dispatch.NewCoordinator(registry, sender,
		recipients.Options{SelfNotify: cfg.Notify.SelfNotify}, logging.NewNopLogger())
	handler := NewNotificationHandler(cfg, coordinator, logging.NewNopLogger())

	app := createTestApp()
	app.Post("/webhook/github", handler.HandleGitHub)
	app.Post("/webhook/gitlab", handler.HandleGitLab)
	return app, sender
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded), "body: %s", body)
	return decoded
}
