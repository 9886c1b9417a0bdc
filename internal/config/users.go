package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/redhat-data-and-ai/teams-notifier/internal/errors"
)

// User is one registered notification recipient
type User struct {
	Name            string          `yaml:"name" json:"name"`
	TeamsWebhookURL string          `yaml:"teamsWebhookUrl" json:"teamsWebhookUrl"`
	GitHub          *GitHubIdentity `yaml:"github,omitempty" json:"github,omitempty"`
	GitLab          *GitLabIdentity `yaml:"gitlab,omitempty" json:"gitlab,omitempty"`
	MentionAliases  []string        `yaml:"mentionAliases,omitempty" json:"mentionAliases,omitempty"`
}

// GitHubIdentity identifies a user on GitHub
type GitHubIdentity struct {
	Username string `yaml:"username" json:"username"`
}

// GitLabIdentity identifies a user on GitLab. Merge request payloads carry
// only the numeric author id, so UserID is what ownership is matched on.
type GitLabIdentity struct {
	Username string `yaml:"username" json:"username"`
	UserID   int64  `yaml:"userId" json:"userId"`
}

// GitHubUsername returns the GitHub username or ""
func (u User) GitHubUsername() string {
	if u.GitHub == nil {
		return ""
	}
	return u.GitHub.Username
}

// GitLabUsername returns the GitLab username or ""
func (u User) GitLabUsername() string {
	if u.GitLab == nil {
		return ""
	}
	return u.GitLab.Username
}

// GitLabUserID returns the GitLab numeric id as a string, or "" when unset
func (u User) GitLabUserID() string {
	if u.GitLab == nil || u.GitLab.UserID == 0 {
		return ""
	}
	return strconv.FormatInt(u.GitLab.UserID, 10)
}

// HasIdentity reports whether the user can ever match an event
func (u User) HasIdentity() bool {
	return u.GitHubUsername() != "" || u.GitLabUsername() != "" || u.GitLabUserID() != ""
}

// usersFile is the mapping form of the registry document
type usersFile struct {
	Users []User `yaml:"users"`
}

// LoadUsers loads and validates the user registry. The inline document wins
// over the file path. The process must refuse to start on any error.
func LoadUsers(cfg UsersConfig) ([]User, error) {
	var data []byte
	origin := "USERS_CONFIG"

	if strings.TrimSpace(cfg.Inline) != "" {
		data = []byte(cfg.Inline)
	} else {
		path := cfg.Path
		if path == "" {
			path = "users.yaml"
		}
		origin = path

		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("user config file not found: %s (set USERS_CONFIG_PATH or USERS_CONFIG)", path), err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read user config file %s", path), err)
		}
		data = content
	}

	users, err := ParseUsers(data)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to parse user config %s", origin), err)
	}

	if err := ValidateUsers(users); err != nil {
		return nil, fmt.Errorf("invalid user configuration in %s: %w", origin, err)
	}

	return users, nil
}

// ParseUsers decodes a registry document. Both a top-level list and a
// mapping with a "users" key are accepted; JSON parses as YAML.
func ParseUsers(data []byte) ([]User, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var users []User
		if err := doc.Decode(&users); err != nil {
			return nil, err
		}
		return users, nil
	case yaml.MappingNode:
		var file usersFile
		if err := doc.Decode(&file); err != nil {
			return nil, err
		}
		return file.Users, nil
	default:
		return nil, fmt.Errorf("user config must be a list or a mapping with a users key")
	}
}

// ValidateUsers validates the registry. Names must be present and unique,
// since they identify recipients in every response and log line.
func ValidateUsers(users []User) error {
	if len(users) == 0 {
		return apperrors.NewConfigError("no users configured", nil)
	}

	validator := apperrors.NewValidator()
	seenNames := make(map[string]struct{}, len(users))

	for i, user := range users {
		prefix := fmt.Sprintf("users[%d]", i)
		if user.Name != "" {
			prefix = fmt.Sprintf("users[%s]", user.Name)
		}

		validator.RequiredField(prefix+".name", user.Name)
		validator.Unique(prefix+".name", user.Name, seenNames)
		validator.RequiredField(prefix+".teamsWebhookUrl", user.TeamsWebhookURL)
		validator.ValidateURL(prefix+".teamsWebhookUrl", user.TeamsWebhookURL)
		validator.ValidateUsername(prefix+".github.username", user.GitHubUsername())
		validator.ValidateUsername(prefix+".gitlab.username", user.GitLabUsername())

		if user.GitLab != nil && user.GitLab.UserID < 0 {
			validator.AddError(prefix+".gitlab.userId", "positive_integer", "Must be a positive integer", user.GitLab.UserID)
		}
		for j, alias := range user.MentionAliases {
			validator.ValidateUsername(fmt.Sprintf("%s.mentionAliases[%d]", prefix, j), strings.TrimPrefix(alias, "@"))
		}
	}

	return validator.Err()
}
