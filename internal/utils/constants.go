package utils

// Service identity - reported by health and system endpoints
const (
	ServiceName = "teams-notifier"
	Version     = "v1.0.0"
)

// Inbound webhook headers
const (
	HeaderGitHubSignature = "X-Hub-Signature-256"
	HeaderGitHubEvent     = "X-GitHub-Event"
	HeaderGitHubDelivery  = "X-GitHub-Delivery"
	HeaderGitLabToken     = "X-Gitlab-Token"
	HeaderGitLabEvent     = "X-Gitlab-Event"
)

// GitHubPingEvent is sent once when a GitHub webhook is created
const GitHubPingEvent = "ping"
