package webhook

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhat-data-and-ai/teams-notifier/internal/recipients"
)

func TestNewManagementHandler(t *testing.T) {
	cfg := createTestConfig()
	handler := NewManagementHandler(cfg, recipients.NewRegistry(testUsers()))

	assert.NotNil(t, handler)
	assert.Equal(t, cfg, handler.config)
}

func TestManagementHandler_HandleUsers(t *testing.T) {
	handler := NewManagementHandler(createTestConfig(), recipients.NewRegistry(testUsers()))

	app := createTestApp()
	app.Get("/api/users", handler.HandleUsers)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	response := decodeJSON(t, resp)
	assert.Equal(t, float64(2), response["total_users"])
	assert.Equal(t, float64(1), response["github_users"])
	assert.Equal(t, float64(1), response["gitlab_users"])

	users := response["users"].([]interface{})
	require.Len(t, users, 2)

	alice := users[0].(map[string]interface{})
	assert.Equal(t, "alice", alice["name"])
	assert.Equal(t, "alice", alice["github"])
	assert.Equal(t, float64(1), alice["alias_count"])
	assert.Nil(t, alice["gitlab"])

	bob := users[1].(map[string]interface{})
	gitlab := bob["gitlab"].(map[string]interface{})
	assert.Equal(t, "bob", gitlab["username"])
	assert.Equal(t, "999", gitlab["user_id"])
}

func TestManagementHandler_HandleUsers_NeverExposesWebhookURL(t *testing.T) {
	handler := NewManagementHandler(createTestConfig(), recipients.NewRegistry(testUsers()))

	app := createTestApp()
	app.Get("/api/users", handler.HandleUsers)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "teams.example.com")
	assert.NotContains(t, string(body), "teamsWebhookUrl")
}

func TestManagementHandler_HandleSystemInfo(t *testing.T) {
	cfg := createTestConfig()
	cfg.GitHub.WebhookSecret = "secret"
	handler := NewManagementHandler(cfg, recipients.NewRegistry(testUsers()))

	app := createTestApp()
	app.Get("/api/system", handler.HandleSystemInfo)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/system", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	response := decodeJSON(t, resp)
	assert.Equal(t, "teams-notifier", response["service"])
	assert.Equal(t, "v1.0.0", response["version"])
	assert.Equal(t, "HMAC-SHA256 signature verification", response["github_security"])
	assert.Equal(t, "Disabled (no token configured)", response["gitlab_security"])
	assert.Equal(t, "10s", response["delivery_timeout"])
	assert.Equal(t, float64(2), response["registered_users"])

	kinds := response["event_kinds"].(map[string]interface{})
	assert.Equal(t, []interface{}{"merge", "review", "comment"}, kinds["github"])

	endpoints := response["endpoints"].([]interface{})
	assert.Contains(t, endpoints, "/webhook/github")
	assert.Contains(t, endpoints, "/webhook/gitlab")
	assert.Contains(t, endpoints, "/metrics")
}

func TestManagementHandler_HandleSystemInfo_MetricsDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.Metrics.Enabled = false
	handler := NewManagementHandler(cfg, recipients.NewRegistry(testUsers()))

	app := createTestApp()
	app.Get("/api/system", handler.HandleSystemInfo)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/system", nil))
	require.NoError(t, err)

	response := decodeJSON(t, resp)
	assert.NotContains(t, response["endpoints"].([]interface{}), "/metrics")
}
