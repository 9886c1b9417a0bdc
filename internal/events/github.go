package events

import (
	"encoding/json"
	"strings"

	"github.com/google/go-github/v68/github"
)

// githubMerge matches a pull_request "closed" delivery with merged=true
func githubMerge(body []byte) (*Event, bool) {
	var ev github.PullRequestEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, false
	}
	if ev.GetAction() != "closed" || ev.PullRequest == nil || !ev.PullRequest.GetMerged() {
		return nil, false
	}

	event := githubPullRequestFields(ev.PullRequest, ev.Repo)
	event.Merge = &MergeDetails{
		MergedByIdentity: firstNonEmpty(ev.PullRequest.GetMergedBy().GetLogin(), ev.GetSender().GetLogin()),
	}
	return event, true
}

// githubReview matches a submitted review that approves or requests changes.
// Plain "commented" reviews are not notified.
func githubReview(body []byte) (*Event, bool) {
	var ev github.PullRequestReviewEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, false
	}
	if ev.GetAction() != "submitted" || ev.Review == nil {
		return nil, false
	}

	state := ReviewState(strings.ToLower(ev.Review.GetState()))
	if state != ReviewApproved && state != ReviewChangesRequested {
		return nil, false
	}

	event := githubPullRequestFields(ev.PullRequest, ev.Repo)
	event.Review = &ReviewDetails{
		State:              state,
		ReviewedByIdentity: firstNonEmpty(ev.Review.GetUser().GetLogin(), ev.GetSender().GetLogin()),
		Body:               ev.Review.GetBody(),
	}
	return event, true
}

// githubComment matches a created comment on a pull request. The review-line
// shape is tried first because it is a structural superset of the issue
// shape in the comment object.
func githubComment(body []byte) (*Event, bool) {
	if event, ok := githubReviewLineComment(body); ok {
		return event, true
	}
	return githubIssueComment(body)
}

func githubReviewLineComment(body []byte) (*Event, bool) {
	var ev github.PullRequestReviewCommentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, false
	}
	if ev.GetAction() != "created" || ev.Comment == nil || ev.PullRequest == nil || ev.Comment.GetPath() == "" {
		return nil, false
	}

	event := githubPullRequestFields(ev.PullRequest, ev.Repo)
	event.Comment = &CommentDetails{
		AuthorIdentity: firstNonEmpty(ev.Comment.GetUser().GetLogin(), ev.GetSender().GetLogin()),
		Body:           ev.Comment.GetBody(),
		URL:            ev.Comment.GetHTMLURL(),
		FilePath:       ev.Comment.GetPath(),
	}
	return event, true
}

// githubIssueCommentPayload is an issue_comment delivery that may also carry
// a pull_request object (some integrations forward both).
type githubIssueCommentPayload struct {
	github.IssueCommentEvent
	PullRequest *github.PullRequest `json:"pull_request,omitempty"`
}

func githubIssueComment(body []byte) (*Event, bool) {
	var ev githubIssueCommentPayload
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, false
	}
	if ev.GetAction() != "created" || ev.Comment == nil {
		return nil, false
	}

	var event *Event
	switch {
	case ev.PullRequest != nil:
		event = githubPullRequestFields(ev.PullRequest, ev.Repo)
	case ev.Issue != nil && ev.Issue.PullRequestLinks != nil:
		// Plain issue comments have no pull_request marker on the issue
		event = &Event{
			PRAuthorIdentity: ev.Issue.GetUser().GetLogin(),
			PRTitle:          ev.Issue.GetTitle(),
			PRURL:            firstNonEmpty(ev.Issue.GetPullRequestLinks().GetHTMLURL(), ev.Issue.GetHTMLURL()),
			RepoName:         ev.GetRepo().GetFullName(),
		}
	default:
		return nil, false
	}

	event.Comment = &CommentDetails{
		AuthorIdentity: firstNonEmpty(ev.Comment.GetUser().GetLogin(), ev.GetSender().GetLogin()),
		Body:           ev.Comment.GetBody(),
		URL:            ev.Comment.GetHTMLURL(),
	}
	return event, true
}

func githubPullRequestFields(pr *github.PullRequest, repo *github.Repository) *Event {
	return &Event{
		PRAuthorIdentity: pr.GetUser().GetLogin(),
		PRTitle:          pr.GetTitle(),
		PRURL:            pr.GetHTMLURL(),
		RepoName:         firstNonEmpty(repo.GetFullName(), repo.GetName()),
	}
}
