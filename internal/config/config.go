package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	GitHub   GitHubConfig
	GitLab   GitLabConfig
	Users    UsersConfig
	Delivery DeliveryConfig
	Notify   NotifyConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// GitHubConfig holds GitHub webhook security configuration
type GitHubConfig struct {
	WebhookSecret string // HMAC secret for X-Hub-Signature-256
}

// GitLabConfig holds GitLab webhook security configuration
type GitLabConfig struct {
	WebhookToken string // Shared secret compared against X-Gitlab-Token
}

// UsersConfig tells the loader where the user registry lives
type UsersConfig struct {
	Path   string // YAML file path
	Inline string // Inline YAML or JSON document, wins over Path
}

// DeliveryConfig holds outbound Teams webhook settings
type DeliveryConfig struct {
	Timeout time.Duration
}

// NotifyConfig holds notification behaviour switches
type NotifyConfig struct {
	// SelfNotify disables self-notification suppression. Test mode only.
	SelfNotify bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	timeoutSeconds := v.GetInt("DELIVERY_TIMEOUT_SECONDS")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
		},
		GitHub: GitHubConfig{
			WebhookSecret: v.GetString("GITHUB_WEBHOOK_SECRET"),
		},
		GitLab: GitLabConfig{
			WebhookToken: v.GetString("GITLAB_WEBHOOK_TOKEN"),
		},
		Users: UsersConfig{
			Path:   v.GetString("USERS_CONFIG_PATH"),
			Inline: v.GetString("USERS_CONFIG"),
		},
		Delivery: DeliveryConfig{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		Notify: NotifyConfig{
			SelfNotify: v.GetBool("NOTIFY_SELF"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("GITHUB_WEBHOOK_SECRET", "")
	v.SetDefault("GITLAB_WEBHOOK_TOKEN", "")
	v.SetDefault("USERS_CONFIG_PATH", "users.yaml")
	v.SetDefault("USERS_CONFIG", "")
	v.SetDefault("DELIVERY_TIMEOUT_SECONDS", 10)
	v.SetDefault("NOTIFY_SELF", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_ENABLED", true)
}

// HasGitHubSecret returns true if GitHub signature verification is configured
func (c *Config) HasGitHubSecret() bool {
	return c.GitHub.WebhookSecret != ""
}

// HasGitLabToken returns true if GitLab token verification is configured
func (c *Config) HasGitLabToken() bool {
	return c.GitLab.WebhookToken != ""
}

// GitHubSecurityMode returns a description of the GitHub webhook security mode
func (c *Config) GitHubSecurityMode() string {
	if c.HasGitHubSecret() {
		return "HMAC-SHA256 signature verification"
	}
	return "Disabled (no secret configured)"
}

// GitLabSecurityMode returns a description of the GitLab webhook security mode
func (c *Config) GitLabSecurityMode() string {
	if c.HasGitLabToken() {
		return "Token verification enabled"
	}
	return "Disabled (no token configured)"
}

// NotifyMode describes whether self-notifications are suppressed
func (c *Config) NotifyMode() string {
	if c.Notify.SelfNotify {
		return "Test mode (self-notifications enabled)"
	}
	return "Normal (self-notifications suppressed)"
}
