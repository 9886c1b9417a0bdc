package events

// Kind identifies the semantic event carried by a webhook delivery
type Kind string

const (
	KindMerge   Kind = "merge"
	KindReview  Kind = "review"
	KindComment Kind = "comment"
)

// Source identifies the platform a webhook came from
type Source string

const (
	SourceGitHub Source = "github"
	SourceGitLab Source = "gitlab"
)

// Noun is the platform's name for a change request
func (s Source) Noun() string {
	if s == SourceGitLab {
		return "MR"
	}
	return "PR"
}

// ReviewState is the outcome of a submitted review
type ReviewState string

const (
	ReviewApproved         ReviewState = "approved"
	ReviewChangesRequested ReviewState = "changes_requested"
)

// Event is the normalized form of a recognized webhook delivery. Exactly one
// of Comment, Merge and Review is set, matching Kind.
type Event struct {
	Kind   Kind
	Source Source

	// PRAuthorIdentity is the GitHub login, or the GitLab numeric author id
	// rendered as a string. Empty when the payload does not carry it.
	PRAuthorIdentity string
	PRTitle          string
	PRURL            string
	RepoName         string

	Comment *CommentDetails
	Merge   *MergeDetails
	Review  *ReviewDetails
}

// CommentDetails holds comment-specific fields
type CommentDetails struct {
	AuthorIdentity string
	Body           string
	URL            string
	// FilePath is set only for review-line (diff) comments
	FilePath string
}

// MergeDetails holds merge-specific fields
type MergeDetails struct {
	MergedByIdentity string
}

// ReviewDetails holds review-specific fields
type ReviewDetails struct {
	State              ReviewState
	ReviewedByIdentity string
	Body               string
}

// ActorIdentity returns the username of whoever caused the event
func (e *Event) ActorIdentity() string {
	switch {
	case e.Comment != nil:
		return e.Comment.AuthorIdentity
	case e.Merge != nil:
		return e.Merge.MergedByIdentity
	case e.Review != nil:
		return e.Review.ReviewedByIdentity
	}
	return ""
}

// IsLineComment reports whether the event is a review-line comment
func (e *Event) IsLineComment() bool {
	return e.Comment != nil && e.Comment.FilePath != ""
}
