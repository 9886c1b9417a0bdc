package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Sample deliveries for manual end-to-end checks against a running relay.
// Usernames and ids line up with the alice/bob users used in the tests.
var samples = map[string]struct {
	source string
	event  string
	body   string
}{
	"github-merge": {"github", "pull_request", `{
  "action": "closed",
  "pull_request": {"title": "Add login page", "html_url": "https://github.com/acme/web/pull/7",
    "merged": true, "user": {"login": "alice"}, "merged_by": {"login": "carol"}},
  "repository": {"full_name": "acme/web"}
}`},
	"github-review": {"github", "pull_request_review", `{
  "action": "submitted",
  "review": {"state": "changes_requested", "body": "Please add tests", "user": {"login": "carol"}},
  "pull_request": {"title": "Add login page", "html_url": "https://github.com/acme/web/pull/7", "user": {"login": "alice"}},
  "repository": {"full_name": "acme/web"}
}`},
	"github-comment": {"github", "issue_comment", `{
  "action": "created",
  "issue": {"title": "Add login page", "html_url": "https://github.com/acme/web/pull/7",
    "user": {"login": "alice"}, "pull_request": {"html_url": "https://github.com/acme/web/pull/7"}},
  "comment": {"body": "cc @frontend-team", "html_url": "https://github.com/acme/web/pull/7#issuecomment-1", "user": {"login": "carol"}},
  "repository": {"full_name": "acme/web"}
}`},
	"gitlab-note": {"gitlab", "Note Hook", `{
  "object_kind": "note",
  "user": {"username": "dave"},
  "project": {"path_with_namespace": "acme/api"},
  "object_attributes": {"note": "hey @bob-team check this", "noteable_type": "MergeRequest",
    "url": "https://gitlab.com/acme/api/-/merge_requests/3#note_1"},
  "merge_request": {"title": "Speed up queries", "url": "https://gitlab.com/acme/api/-/merge_requests/3", "author_id": 999}
}`},
	"gitlab-approval": {"gitlab", "Merge Request Hook", `{
  "object_kind": "merge_request",
  "user": {"username": "carol"},
  "project": {"path_with_namespace": "acme/api"},
  "object_attributes": {"title": "Speed up queries", "url": "https://gitlab.com/acme/api/-/merge_requests/3",
    "author_id": 999, "action": "approved"}
}`},
}

func main() {
	var (
		baseURL string
		secret  string
	)

	cmd := &cobra.Command{
		Use:       "send_webhook <sample>",
		Short:     "POST a sample GitHub or GitLab webhook to a running teams-notifier",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sampleNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(baseURL, args[0], secret)
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 15 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(cmd.OutOrStdout(), "HTTP %d\n%s\n", resp.StatusCode, body)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:3000", "teams-notifier base URL")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("WEBHOOK_SECRET"),
		"GitHub HMAC secret or GitLab token (default $WEBHOOK_SECRET)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRequest signs GitHub samples with HMAC-SHA256 and sets the GitLab
// token header for GitLab samples
func buildRequest(baseURL, name, secret string) (*http.Request, error) {
	sample, ok := samples[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample %q (have: %s)", name, strings.Join(sampleNames(), ", "))
	}

	url := strings.TrimRight(baseURL, "/") + "/webhook/" + sample.source
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(sample.body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	switch sample.source {
	case "github":
		req.Header.Set("X-GitHub-Event", sample.event)
		if secret != "" {
			mac := hmac.New(sha256.New, []byte(secret))
			mac.Write([]byte(sample.body))
			req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
		}
	case "gitlab":
		req.Header.Set("X-Gitlab-Event", sample.event)
		if secret != "" {
			req.Header.Set("X-Gitlab-Token", secret)
		}
	}

	return req, nil
}

func sampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	return names
}
