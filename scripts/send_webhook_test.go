package main

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_GitHubSigned(t *testing.T) {
	req, err := buildRequest("http://localhost:3000/", "github-merge", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "http://localhost:3000/webhook/github", req.URL.String())
	assert.Equal(t, "pull_request", req.Header.Get("X-GitHub-Event"))
	assert.Regexp(t, `^sha256=[0-9a-f]{64}$`, req.Header.Get("X-Hub-Signature-256"))
	assert.Empty(t, req.Header.Get("X-Gitlab-Token"))
}

func TestBuildRequest_GitLabToken(t *testing.T) {
	req, err := buildRequest("http://relay", "gitlab-note", "tok")
	require.NoError(t, err)

	assert.Equal(t, "http://relay/webhook/gitlab", req.URL.String())
	assert.Equal(t, "tok", req.Header.Get("X-Gitlab-Token"))
	assert.Equal(t, "Note Hook", req.Header.Get("X-Gitlab-Event"))
	assert.Empty(t, req.Header.Get("X-Hub-Signature-256"))
}

func TestBuildRequest_NoSecret(t *testing.T) {
	req, err := buildRequest("http://relay", "github-review", "")
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("X-Hub-Signature-256"))
}

func TestBuildRequest_UnknownSample(t *testing.T) {
	_, err := buildRequest("http://relay", "push", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sample")
}

func TestSamples_AreValidJSON(t *testing.T) {
	for _, name := range sampleNames() {
		req, err := buildRequest("http://relay", name, "")
		require.NoError(t, err, name)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.True(t, json.Valid(body), name)
	}
}
