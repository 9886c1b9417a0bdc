package cards

// MessageCard is the legacy Office 365 connector card accepted by Teams
// incoming webhooks.
type MessageCard struct {
	Type            string    `json:"@type"`
	Context         string    `json:"@context"`
	ThemeColor      string    `json:"themeColor"`
	Summary         string    `json:"summary"`
	Title           string    `json:"title"`
	Sections        []Section `json:"sections,omitempty"`
	PotentialAction []Action  `json:"potentialAction,omitempty"`
}

// Section groups an activity header, facts and free text
type Section struct {
	ActivityTitle    string `json:"activityTitle,omitempty"`
	ActivitySubtitle string `json:"activitySubtitle,omitempty"`
	Facts            []Fact `json:"facts,omitempty"`
	Text             string `json:"text,omitempty"`
	Markdown         bool   `json:"markdown"`
}

// Fact is a name/value row
type Fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Action is an OpenUri button
type Action struct {
	Type    string   `json:"@type"`
	Name    string   `json:"name"`
	Targets []Target `json:"targets"`
}

// Target is a platform-specific URI for an action
type Target struct {
	OS  string `json:"os"`
	URI string `json:"uri"`
}

const (
	cardType    = "MessageCard"
	cardContext = "http://schema.org/extensions"
	actionType  = "OpenUri"
)

// Theme colors per variant
const (
	ColorComment          = "0076D7"
	ColorMention          = "6264A7"
	ColorMerge            = "6F42C1"
	ColorApproved         = "2EA44F"
	ColorChangesRequested = "CB2431"
)

func newCard(color, title string) *MessageCard {
	return &MessageCard{
		Type:       cardType,
		Context:    cardContext,
		ThemeColor: color,
		Summary:    title,
		Title:      title,
	}
}

func openURI(name, uri string) Action {
	return Action{
		Type:    actionType,
		Name:    name,
		Targets: []Target{{OS: "default", URI: uri}},
	}
}

// Actions returns the button labels in order
func (c *MessageCard) Actions() []string {
	names := make([]string, 0, len(c.PotentialAction))
	for _, a := range c.PotentialAction {
		names = append(names, a.Name)
	}
	return names
}

// Fact returns the value of the named fact in the first section
func (c *MessageCard) Fact(name string) (string, bool) {
	if len(c.Sections) == 0 {
		return "", false
	}
	for _, f := range c.Sections[0].Facts {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
