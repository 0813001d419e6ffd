package hook

// EventType represents a host lifecycle event a hook can fire on.
type EventType string

// All event types the host runtime fires hooks for.
const (
	SessionStart     EventType = "SessionStart"
	PreToolUse       EventType = "PreToolUse"
	PostToolUse      EventType = "PostToolUse"
	SubagentStop     EventType = "SubagentStop"
	UserPromptSubmit EventType = "UserPromptSubmit"
	Stop             EventType = "Stop"
	PrePush          EventType = "PrePush"
)

// MatcherRule describes what matcher shape an event type accepts.
type MatcherRule int

const (
	// MatcherEmpty means the event fires unconditionally; any filter is an error.
	MatcherEmpty MatcherRule = iota
	// MatcherRequired means the event needs at least a tool or path filter.
	MatcherRequired
	// MatcherOptional means a filter narrows the event but may be omitted.
	MatcherOptional
)

// EventSpec describes the policy for one event type: the matcher shape it
// accepts, the closed timeout range in seconds, and whether a nonzero
// exit from the hook may block the host's workflow.
type EventSpec struct {
	Type        EventType
	Description string
	Matcher     MatcherRule
	MinTimeout  int
	MaxTimeout  int
	MayBlock    bool
}

// catalog is the fixed set of supported event types. Order here is the
// order shown to users.
var catalog = []EventSpec{
	{
		Type:        SessionStart,
		Description: "Fires when the host starts or resumes a session",
		Matcher:     MatcherEmpty,
		MinTimeout:  1,
		MaxTimeout:  10,
	},
	{
		Type:        PreToolUse,
		Description: "Fires before a tool call; a nonzero exit blocks the call",
		Matcher:     MatcherRequired,
		MinTimeout:  1,
		MaxTimeout:  5,
		MayBlock:    true,
	},
	{
		Type:        PostToolUse,
		Description: "Fires after a tool call completes",
		Matcher:     MatcherRequired,
		MinTimeout:  1,
		MaxTimeout:  60,
	},
	{
		Type:        SubagentStop,
		Description: "Fires when a subagent finishes",
		Matcher:     MatcherEmpty,
		MinTimeout:  1,
		MaxTimeout:  120,
	},
	{
		Type:        UserPromptSubmit,
		Description: "Fires when the user submits a prompt; a nonzero exit rejects it",
		Matcher:     MatcherOptional,
		MinTimeout:  1,
		MaxTimeout:  5,
		MayBlock:    true,
	},
	{
		Type:        Stop,
		Description: "Fires when the main agent finishes responding",
		Matcher:     MatcherEmpty,
		MinTimeout:  1,
		MaxTimeout:  30,
	},
	{
		Type:        PrePush,
		Description: "Fires before an outgoing push; a nonzero exit aborts it",
		Matcher:     MatcherOptional,
		MinTimeout:  1,
		MaxTimeout:  60,
		MayBlock:    true,
	},
}

// Events returns the full event catalog.
func Events() []EventSpec {
	out := make([]EventSpec, len(catalog))
	copy(out, catalog)
	return out
}

// EventSpecFor returns the spec for an event type, or false if the type
// is not in the catalog.
func EventSpecFor(t EventType) (EventSpec, bool) {
	for _, spec := range catalog {
		if spec.Type == t {
			return spec, true
		}
	}
	return EventSpec{}, false
}

// ValidEventType reports whether t names a supported event type.
func ValidEventType(t EventType) bool {
	_, ok := EventSpecFor(t)
	return ok
}

// EventTypeNames returns the names of all supported event types in
// catalog order.
func EventTypeNames() []string {
	names := make([]string, len(catalog))
	for i, spec := range catalog {
		names[i] = string(spec.Type)
	}
	return names
}
