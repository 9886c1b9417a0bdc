package events

import (
	"encoding/json"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	gitlabKindMergeRequest = "merge_request"
	gitlabKindNote         = "note"

	gitlabActionMerge    = "merge"
	gitlabActionApproved = "approved"

	gitlabNoteableMergeRequest = "MergeRequest"
)

// gitlabEnvelope carries the fields shared by every GitLab hook that the
// typed client-go events model differently across hook kinds.
type gitlabEnvelope struct {
	ObjectKind string `json:"object_kind"`
	User       struct {
		Username string `json:"username"`
	} `json:"user"`
	ObjectAttributes struct {
		Position *struct {
			NewPath string `json:"new_path"`
			OldPath string `json:"old_path"`
		} `json:"position"`
	} `json:"object_attributes"`
	MergeRequest struct {
		URL string `json:"url"`
	} `json:"merge_request"`
}

func decodeGitLabEnvelope(body []byte, kind string) (*gitlabEnvelope, bool) {
	var env gitlabEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if env.ObjectKind != kind {
		return nil, false
	}
	return &env, true
}

// gitlabMerge matches a merge_request hook whose action is "merge"
func gitlabMerge(body []byte) (*Event, bool) {
	ev, env, ok := decodeMergeRequestHook(body, gitlabActionMerge)
	if !ok {
		return nil, false
	}

	event := gitlabMergeRequestFields(ev)
	event.Merge = &MergeDetails{MergedByIdentity: env.User.Username}
	return event, true
}

// gitlabApproval matches a merge_request hook whose action is "approved".
// GitLab sends no changes-requested signal, so the state is always approved.
func gitlabApproval(body []byte) (*Event, bool) {
	ev, env, ok := decodeMergeRequestHook(body, gitlabActionApproved)
	if !ok {
		return nil, false
	}

	event := gitlabMergeRequestFields(ev)
	event.Review = &ReviewDetails{
		State:              ReviewApproved,
		ReviewedByIdentity: env.User.Username,
	}
	return event, true
}

// gitlabNote matches a note hook on a merge request. The note payload has no
// MR author username, only the numeric author id.
func gitlabNote(body []byte) (*Event, bool) {
	env, ok := decodeGitLabEnvelope(body, gitlabKindNote)
	if !ok {
		return nil, false
	}

	var ev gitlab.MergeCommentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, false
	}
	if ev.ObjectAttributes.NoteableType != gitlabNoteableMergeRequest {
		return nil, false
	}

	var filePath string
	if pos := env.ObjectAttributes.Position; pos != nil {
		filePath = firstNonEmpty(pos.NewPath, pos.OldPath)
	}

	return &Event{
		PRAuthorIdentity: numericIdentity(ev.MergeRequest.AuthorID),
		PRTitle:          ev.MergeRequest.Title,
		PRURL:            env.MergeRequest.URL,
		RepoName:         firstNonEmpty(ev.Project.PathWithNamespace, ev.Project.Name),
		Comment: &CommentDetails{
			AuthorIdentity: env.User.Username,
			Body:           ev.ObjectAttributes.Note,
			URL:            ev.ObjectAttributes.URL,
			FilePath:       filePath,
		},
	}, true
}

func decodeMergeRequestHook(body []byte, action string) (*gitlab.MergeEvent, *gitlabEnvelope, bool) {
	env, ok := decodeGitLabEnvelope(body, gitlabKindMergeRequest)
	if !ok {
		return nil, nil, false
	}

	var ev gitlab.MergeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, nil, false
	}
	if ev.ObjectAttributes.Action != action {
		return nil, nil, false
	}
	return &ev, env, true
}

func gitlabMergeRequestFields(ev *gitlab.MergeEvent) *Event {
	return &Event{
		PRAuthorIdentity: numericIdentity(ev.ObjectAttributes.AuthorID),
		PRTitle:          ev.ObjectAttributes.Title,
		PRURL:            ev.ObjectAttributes.URL,
		RepoName:         firstNonEmpty(ev.Project.PathWithNamespace, ev.Project.Name),
	}
}

// numericIdentity renders a GitLab id; zero means absent
func numericIdentity(id any) string {
	s := fmt.Sprint(id)
	if s == "0" {
		return ""
	}
	return s
}
