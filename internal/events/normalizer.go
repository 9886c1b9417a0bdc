package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when the body is not a JSON object
var ErrMalformedPayload = errors.New("malformed webhook payload")

// ErrUnknownSource is returned for a platform with no registered extractors
var ErrUnknownSource = errors.New("unknown event source")

// extractor tries to read one event kind out of a raw body. It returns
// false when the body does not represent that kind.
type extractor func(body []byte) (*Event, bool)

type classifier struct {
	kind    Kind
	extract extractor
}

// classifiers lists, per source, the extractors in priority order. A single
// delivery encodes one semantic event, so the first match wins.
var classifiers = map[Source][]classifier{
	SourceGitHub: {
		{kind: KindMerge, extract: githubMerge},
		{kind: KindReview, extract: githubReview},
		{kind: KindComment, extract: githubComment},
	},
	SourceGitLab: {
		{kind: KindMerge, extract: gitlabMerge},
		{kind: KindReview, extract: gitlabApproval},
		{kind: KindComment, extract: gitlabNote},
	},
}

// Normalize classifies a raw webhook body. A nil event with a nil error
// means the payload is valid JSON but not a recognized event.
func Normalize(source Source, body []byte) (*Event, error) {
	chain, ok := classifiers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	for _, c := range chain {
		if event, ok := c.extract(body); ok {
			event.Kind = c.kind
			event.Source = source
			return event, nil
		}
	}

	return nil, nil
}

// Kinds returns the classification order for a source
func Kinds(source Source) []Kind {
	chain := classifiers[source]
	kinds := make([]Kind, 0, len(chain))
	for _, c := range chain {
		kinds = append(kinds, c.kind)
	}
	return kinds
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
