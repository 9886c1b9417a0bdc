package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const githubMergePayload = `{
	"action": "closed",
	"pull_request": {
		"title": "Add login page",
		"html_url": "https://github.com/acme/web/pull/7",
		"merged": true,
		"user": {"login": "alice"},
		"merged_by": {"login": "carol"}
	},
	"repository": {"full_name": "acme/web"},
	"sender": {"login": "carol"}
}`

const gitlabNotePayload = `{
	"object_kind": "note",
	"user": {"username": "dave"},
	"project": {"path_with_namespace": "acme/api"},
	"object_attributes": {
		"note": "hey @bob-team check this",
		"noteable_type": "MergeRequest",
		"url": "https://gitlab.com/acme/api/-/merge_requests/3#note_1"
	},
	"merge_request": {
		"title": "Speed up queries",
		"url": "https://gitlab.com/acme/api/-/merge_requests/3",
		"author_id": 999
	}
}`

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestHandleGitHub_MergeWithoutSecret(t *testing.T) {
	app, sender := setupNotificationApp(createTestConfig())

	req := httptest.NewRequest("POST", "/webhook/github", strings.NewReader(githubMergePayload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	result := decodeJSON(t, resp)
	assert.Equal(t, true, result["processed"])
	assert.Equal(t, "merge", result["kind"])
	assert.Equal(t, "github", result["source"])
	assert.NotEmpty(t, result["event_id"])

	recipients := result["recipients"].([]interface{})
	require.Len(t, recipients, 1)
	first := recipients[0].(map[string]interface{})
	assert.Equal(t, "alice", first["user"])
	assert.Equal(t, "owner", first["role"])
	assert.Equal(t, true, first["success"])

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "https://teams.example.com/alice", sender.sent[0].endpoint)
}

func TestHandleGitHub_SignatureVerification(t *testing.T) {
	tests := []struct {
		name           string
		signature      string
		expectedStatus int
	}{
		{"valid signature", sign("gh-secret", githubMergePayload), 200},
		{"wrong secret", sign("other-secret", githubMergePayload), 401},
		{"missing signature", "", 401},
		{"garbage signature", "sha256=nothex", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.GitHub.WebhookSecret = "gh-secret"
			app, sender := setupNotificationApp(cfg)

			req := httptest.NewRequest("POST", "/webhook/github", strings.NewReader(githubMergePayload))
			req.Header.Set("Content-Type", "application/json")
			if tt.signature != "" {
				req.Header.Set("X-Hub-Signature-256", tt.signature)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == 401 {
				body := decodeJSON(t, resp)
				assert.Equal(t, "INVALID_SIGNATURE", body["code"])
				assert.Empty(t, sender.sent)
			} else {
				assert.Len(t, sender.sent, 1)
			}
		})
	}
}

func TestHandleGitHub_SignatureCheckedBeforeParsing(t *testing.T) {
	cfg := createTestConfig()
	cfg.GitHub.WebhookSecret = "gh-secret"
	app, _ := setupNotificationApp(cfg)

	req := httptest.NewRequest("POST", "/webhook/github", strings.NewReader(`{not json`))
	req.Header.Set("X-Hub-Signature-256", sign("wrong", `{not json`))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHandleGitHub_Ping(t *testing.T) {
	app, sender := setupNotificationApp(createTestConfig())

	req := httptest.NewRequest("POST", "/webhook/github", strings.NewReader(`{"zen": "Keep it logically awesome.", "hook_id": 1}`))
	req.Header.Set("X-GitHub-Event", "ping")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	result := decodeJSON(t, resp)
	assert.Equal(t, false, result["processed"])
	assert.Equal(t, "ping", result["reason"])
	assert.Empty(t, sender.sent)
}

func TestHandleGitHub_MalformedJSON(t *testing.T) {
	app, _ := setupNotificationApp(createTestConfig())

	req := httptest.NewRequest("POST", "/webhook/github", strings.NewReader(`{"action": `))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body := decodeJSON(t, resp)
	assert.Equal(t, "INVALID_PAYLOAD", body["code"])
}

func TestHandleGitHub_UnrecognizedEvent(t *testing.T) {
	app, sender := setupNotificationApp(createTestConfig())

	req := httptest.NewRequest("POST", "/webhook/github", strings.NewReader(`{"action": "opened", "issue": {"title": "bug"}}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	result := decodeJSON(t, resp)
	assert.Equal(t, false, result["processed"])
	assert.Equal(t, "unrecognized event", result["reason"])
	assert.Empty(t, result["recipients"])
	assert.Empty(t, sender.sent)
}

func TestHandleGitLab_NoteScenario(t *testing.T) {
	cfg := createTestConfig()
	cfg.GitLab.WebhookToken = "gl-token"
	app, sender := setupNotificationApp(cfg)

	req := httptest.NewRequest("POST", "/webhook/gitlab", strings.NewReader(gitlabNotePayload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gitlab-Token", "gl-token")
	req.Header.Set("X-Gitlab-Event", "Note Hook")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	result := decodeJSON(t, resp)
	assert.Equal(t, true, result["processed"])
	assert.Equal(t, "comment", result["kind"])

	recipients := result["recipients"].([]interface{})
	require.Len(t, recipients, 1)
	first := recipients[0].(map[string]interface{})
	assert.Equal(t, "bob", first["user"])
	assert.Equal(t, "owner", first["role"])

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "https://teams.example.com/bob", sender.sent[0].endpoint)
}

func TestHandleGitLab_TokenVerification(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{"correct token", "gl-token", 200},
		{"wrong token", "nope", 401},
		{"missing token", "", 401},
		{"prefix of token", "gl-tok", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.GitLab.WebhookToken = "gl-token"
			app, _ := setupNotificationApp(cfg)

			req := httptest.NewRequest("POST", "/webhook/gitlab", strings.NewReader(gitlabNotePayload))
			if tt.token != "" {
				req.Header.Set("X-Gitlab-Token", tt.token)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestHandleGitLab_NoteOnIssueNotProcessed(t *testing.T) {
	app, sender := setupNotificationApp(createTestConfig())

	body := `{"object_kind": "note", "user": {"username": "dave"}, "object_attributes": {"note": "@bob-team", "noteable_type": "Issue"}}`
	req := httptest.NewRequest("POST", "/webhook/gitlab", strings.NewReader(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	result := decodeJSON(t, resp)
	assert.Equal(t, false, result["processed"])
	assert.Equal(t, "unrecognized event", result["reason"])
	assert.Empty(t, sender.sent)
}

func TestHandleGitLab_MergeWithoutOwner(t *testing.T) {
	app, sender := setupNotificationApp(createTestConfig())

	body := `{"object_kind": "merge_request", "user": {"username": "carol"}, "object_attributes": {"action": "merge", "author_id": 12345}}`
	req := httptest.NewRequest("POST", "/webhook/gitlab", strings.NewReader(body))

	resp, err := app.Test(req)
	require.NoError(t, err)

	result := decodeJSON(t, resp)
	assert.Equal(t, false, result["processed"])
	assert.Equal(t, "merge", result["kind"])
	assert.Equal(t, "no configured recipients", result["reason"])
	assert.Empty(t, sender.sent)
}

func TestVerifyGitHubSignature(t *testing.T) {
	body := []byte(`{"a":1}`)

	assert.True(t, VerifyGitHubSignature(body, "", ""))
	assert.True(t, VerifyGitHubSignature(body, "anything", ""))
	assert.True(t, VerifyGitHubSignature(body, sign("s", `{"a":1}`), "s"))
	assert.False(t, VerifyGitHubSignature(body, "", "s"))
	assert.False(t, VerifyGitHubSignature([]byte(`{"a":2}`), sign("s", `{"a":1}`), "s"))
}

func TestVerifyGitLabToken(t *testing.T) {
	assert.True(t, VerifyGitLabToken("", ""))
	assert.True(t, VerifyGitLabToken("whatever", ""))
	assert.True(t, VerifyGitLabToken("t0ken", "t0ken"))
	assert.False(t, VerifyGitLabToken("", "t0ken"))
	assert.False(t, VerifyGitLabToken("T0KEN", "t0ken"))
}
