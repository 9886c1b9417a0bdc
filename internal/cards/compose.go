package cards

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/redhat-data-and-ai/teams-notifier/internal/events"
	"github.com/redhat-data-and-ai/teams-notifier/internal/recipients"
)

// MaxBodyLength is the most characters of free text a card carries
const MaxBodyLength = 500

// Ellipsis is appended to truncated bodies
const Ellipsis = "..."

// ErrUnsupportedEvent is returned for a (kind, role) pair with no card
var ErrUnsupportedEvent = errors.New("no card variant for event")

// Compose builds the card for one recipient. It performs no I/O.
func Compose(event *events.Event, role recipients.Role, matchedAlias string) (*MessageCard, error) {
	if event == nil {
		return nil, ErrUnsupportedEvent
	}

	switch {
	case event.Kind == events.KindComment && event.Comment != nil && role == recipients.RoleOwner:
		return commentCard(event), nil
	case event.Kind == events.KindComment && event.Comment != nil && role == recipients.RoleMentioned:
		return mentionCard(event, matchedAlias), nil
	case event.Kind == events.KindMerge && event.Merge != nil:
		return mergeCard(event), nil
	case event.Kind == events.KindReview && event.Review != nil:
		return reviewCard(event), nil
	}

	return nil, fmt.Errorf("%w: kind=%s role=%s", ErrUnsupportedEvent, event.Kind, role)
}

// Truncate caps s at MaxBodyLength characters, appending Ellipsis when cut
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxBodyLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxBodyLength]) + Ellipsis
}

func commentCard(event *events.Event) *MessageCard {
	noun := event.Source.Noun()
	c := event.Comment

	title := fmt.Sprintf("New comment on your %s", noun)
	if event.IsLineComment() {
		title = fmt.Sprintf("New review comment on %s in your %s", c.FilePath, noun)
	}

	card := newCard(ColorComment, title)
	card.Sections = []Section{commentSection(event, fmt.Sprintf("%s commented", display(c.AuthorIdentity)))}
	card.PotentialAction = commentActions(event)
	return card
}

func mentionCard(event *events.Event, matchedAlias string) *MessageCard {
	noun := event.Source.Noun()
	c := event.Comment

	title := fmt.Sprintf("%s mentioned @%s in %s", display(c.AuthorIdentity), matchedAlias, withArticle(noun))

	card := newCard(ColorMention, title)
	card.Sections = []Section{commentSection(event, fmt.Sprintf("Mentioned as @%s", matchedAlias))}
	card.PotentialAction = commentActions(event)
	return card
}

func mergeCard(event *events.Event) *MessageCard {
	noun := event.Source.Noun()
	mergedBy := display(event.Merge.MergedByIdentity)

	card := newCard(ColorMerge, fmt.Sprintf("Your %s was merged by %s", noun, mergedBy))
	card.Sections = []Section{{
		ActivityTitle: event.PRTitle,
		Facts: facts(
			Fact{Name: "Repository", Value: event.RepoName},
			Fact{Name: noun, Value: event.PRTitle},
			Fact{Name: "Merged by", Value: mergedBy},
		),
		Markdown: true,
	}}
	card.PotentialAction = viewPR(event)
	return card
}

func reviewCard(event *events.Event) *MessageCard {
	noun := event.Source.Noun()
	r := event.Review
	reviewer := display(r.ReviewedByIdentity)

	color := ColorApproved
	title := fmt.Sprintf("Your %s was approved by %s", noun, reviewer)
	status := "Approved"
	if r.State == events.ReviewChangesRequested {
		color = ColorChangesRequested
		title = fmt.Sprintf("%s requested changes on your %s", reviewer, noun)
		status = "Changes requested"
	}

	card := newCard(color, title)
	card.Sections = []Section{{
		ActivityTitle: event.PRTitle,
		Facts: facts(
			Fact{Name: "Repository", Value: event.RepoName},
			Fact{Name: noun, Value: event.PRTitle},
			Fact{Name: "Reviewer", Value: reviewer},
			Fact{Name: "Status", Value: status},
		),
		Text:     Truncate(r.Body),
		Markdown: true,
	}}
	card.PotentialAction = viewPR(event)
	return card
}

func commentSection(event *events.Event, subtitle string) Section {
	c := event.Comment
	return Section{
		ActivityTitle:    event.PRTitle,
		ActivitySubtitle: subtitle,
		Facts: facts(
			Fact{Name: "Repository", Value: event.RepoName},
			Fact{Name: event.Source.Noun(), Value: event.PRTitle},
			Fact{Name: "Commenter", Value: display(c.AuthorIdentity)},
			Fact{Name: "File", Value: c.FilePath},
		),
		Text:     Truncate(c.Body),
		Markdown: true,
	}
}

// commentActions links the comment then the PR. Buttons without a target
// URL are left out since Teams rejects them.
func commentActions(event *events.Event) []Action {
	var actions []Action
	if event.Comment.URL != "" {
		actions = append(actions, openURI("View Comment", event.Comment.URL))
	}
	return append(actions, viewPR(event)...)
}

func viewPR(event *events.Event) []Action {
	if event.PRURL == "" {
		return nil
	}
	return []Action{openURI("View "+event.Source.Noun(), event.PRURL)}
}

// facts drops rows with no value
func facts(all ...Fact) []Fact {
	out := make([]Fact, 0, len(all))
	for _, f := range all {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

func withArticle(noun string) string {
	if noun == "MR" {
		return "an " + noun
	}
	return "a " + noun
}

func display(identity string) string {
	if identity == "" {
		return "someone"
	}
	return identity
}
