package recipients

import (
	"regexp"
	"strings"

	"github.com/redhat-data-and-ai/teams-notifier/internal/config"
	"github.com/redhat-data-and-ai/teams-notifier/internal/events"
)

// Role is why a user receives a notification
type Role string

const (
	RoleOwner     Role = "owner"
	RoleMentioned Role = "mentioned"
)

// Match is one resolved recipient for an event
type Match struct {
	User         config.User
	Role         Role
	MatchedAlias string
}

// watcher is a user with precompiled mention patterns for one platform
type watcher struct {
	user     config.User
	names    []string
	patterns []*regexp.Regexp
}

// Registry is the read-only user list. It is built once at startup and
// shared across requests without locking.
type Registry struct {
	users    []config.User
	watchers map[events.Source][]watcher
}

// NewRegistry builds a registry. Users are kept in configuration order,
// which decides ties between duplicate identities.
func NewRegistry(users []config.User) *Registry {
	r := &Registry{
		users:    append([]config.User(nil), users...),
		watchers: make(map[events.Source][]watcher, 2),
	}

	for _, source := range []events.Source{events.SourceGitHub, events.SourceGitLab} {
		list := make([]watcher, 0, len(r.users))
		for _, user := range r.users {
			w := watcher{user: user}
			for _, name := range watchNames(user, source) {
				w.names = append(w.names, name)
				w.patterns = append(w.patterns, mentionPattern(name))
			}
			list = append(list, w)
		}
		r.watchers[source] = list
	}

	return r
}

// Users returns a copy of the registered users
func (r *Registry) Users() []config.User {
	return append([]config.User(nil), r.users...)
}

// Len returns the number of registered users
func (r *Registry) Len() int {
	return len(r.users)
}

// Options tune resolution
type Options struct {
	// SelfNotify disables self-notification suppression (test mode)
	SelfNotify bool
}

// Resolve returns the de-duplicated recipients for an event, owner first.
// Merge and review events only ever reach the owner.
func (r *Registry) Resolve(event *events.Event, opts Options) []Match {
	if event == nil {
		return nil
	}

	var matches []Match
	notified := make(map[string]struct{})

	if owner, ok := r.Owner(event); ok && !r.suppressed(owner, event, opts) {
		matches = append(matches, Match{User: owner, Role: RoleOwner})
		notified[strings.ToLower(owner.Name)] = struct{}{}
	}

	if event.Kind != events.KindComment || event.Comment == nil {
		return matches
	}

	for _, m := range r.Mentions(event) {
		key := strings.ToLower(m.User.Name)
		if _, done := notified[key]; done {
			continue
		}
		if r.suppressed(m.User, event, opts) {
			continue
		}
		matches = append(matches, m)
		notified[key] = struct{}{}
	}

	return matches
}

// Owner finds the PR/MR author. GitHub matches on username, GitLab on the
// numeric user id because merge request hooks carry no author username.
func (r *Registry) Owner(event *events.Event) (config.User, bool) {
	identity := event.PRAuthorIdentity
	if identity == "" {
		return config.User{}, false
	}

	for _, user := range r.users {
		switch event.Source {
		case events.SourceGitHub:
			if name := user.GitHubUsername(); name != "" && strings.EqualFold(name, identity) {
				return user, true
			}
		case events.SourceGitLab:
			if id := user.GitLabUserID(); id != "" && id == identity {
				return user, true
			}
		}
	}
	return config.User{}, false
}

// Mentions returns every user with a watch-name mentioned in the comment,
// in registry order. Suppression and de-duplication are left to Resolve.
func (r *Registry) Mentions(event *events.Event) []Match {
	if event.Comment == nil || event.Comment.Body == "" {
		return nil
	}

	body := event.Comment.Body
	var matches []Match
	for _, w := range r.watchers[event.Source] {
		for i, pattern := range w.patterns {
			if pattern.MatchString(body) {
				matches = append(matches, Match{User: w.user, Role: RoleMentioned, MatchedAlias: w.names[i]})
				break
			}
		}
	}
	return matches
}

// suppressed reports whether the user wrote the comment themselves
func (r *Registry) suppressed(user config.User, event *events.Event, opts Options) bool {
	if opts.SelfNotify || event.Comment == nil {
		return false
	}
	author := event.Comment.AuthorIdentity
	if author == "" {
		return false
	}
	username := PlatformUsername(user, event.Source)
	return username != "" && strings.EqualFold(username, author)
}

// PlatformUsername returns the user's username on the given platform
func PlatformUsername(user config.User, source events.Source) string {
	if source == events.SourceGitLab {
		return user.GitLabUsername()
	}
	return user.GitHubUsername()
}

func watchNames(user config.User, source events.Source) []string {
	candidates := append([]string{PlatformUsername(user, source)}, user.MentionAliases...)

	names := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		name := strings.TrimPrefix(strings.TrimSpace(c), "@")
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	return names
}

// mentionPattern matches @name as a whole handle. Word characters and '-'
// both continue a handle, so @team does not match @team-a or @teams.
func mentionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\w-])@` + regexp.QuoteMeta(name) + `(?:$|[^\w-])`)
}
