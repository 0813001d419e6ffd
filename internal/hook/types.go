// Package hook defines the hook data model: the event type catalog, the
// structured matcher, and the HookDefinition unit that gets validated
// and installed into the host's settings file.
package hook

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ActionTypeCommand is the only supported action type. The host runtime
// interprets the command string; this tool never executes it.
const ActionTypeCommand = "command"

// Matcher filters which occurrences of an event a hook fires on. Which
// fields are legal depends on the event type: tool/path filters apply to
// tool events, the content filter to prompt submission, and the branch
// filter to pushes.
type Matcher struct {
	Tools    []string `json:"tools,omitempty"`
	Paths    []string `json:"paths,omitempty"`
	Content  string   `json:"content,omitempty"`
	Branches []string `json:"branches,omitempty"`
}

// IsEmpty reports whether the matcher carries no filter at all.
func (m Matcher) IsEmpty() bool {
	return len(m.Tools) == 0 && len(m.Paths) == 0 && m.Content == "" && len(m.Branches) == 0
}

// HasToolOrPathFilter reports whether the matcher narrows by tool name
// or path pattern, the shapes tool-use events require.
func (m Matcher) HasToolOrPathFilter() bool {
	return len(m.Tools) > 0 || len(m.Paths) > 0
}

// Action is one command the host runs when the hook fires. Timeout is a
// declared budget in seconds, enforced by the host at execution time;
// this tool only checks it against the event type's legal range.
type Action struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

// Metadata records provenance. It never affects runtime behavior, but
// HookName is the stable identifier install and uninstall key on.
type Metadata struct {
	GeneratedBy  string    `json:"generated_by"`
	EventType    EventType `json:"event_type"`
	HookName     string    `json:"hook_name"`
	GenerationID string    `json:"generation_id,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Definition is the unit of hook configuration: one event type, an
// optional matcher, and an ordered list of actions.
type Definition struct {
	Event   EventType
	Matcher Matcher
	Actions []Action
	Meta    Metadata
}

// Name returns the hook's stable identifier.
func (d *Definition) Name() string {
	return d.Meta.HookName
}

// definitionFile is the on-disk hook.json shape.
type definitionFile struct {
	Matcher *Matcher `json:"matcher,omitempty"`
	Hooks   []Action `json:"hooks"`
	Meta    Metadata `json:"_metadata"`
}

// MarshalJSON writes the hook.json wire format. The event type lives in
// _metadata, and an empty matcher is omitted rather than serialized as
// an empty object.
func (d *Definition) MarshalJSON() ([]byte, error) {
	f := definitionFile{Hooks: d.Actions, Meta: d.Meta}
	f.Meta.EventType = d.Event
	if !d.Matcher.IsEmpty() {
		m := d.Matcher
		f.Matcher = &m
	}
	return json.Marshal(f)
}

// UnmarshalJSON reads the hook.json wire format.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var f definitionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	d.Event = f.Meta.EventType
	d.Actions = f.Hooks
	d.Meta = f.Meta
	if f.Matcher != nil {
		d.Matcher = *f.Matcher
	} else {
		d.Matcher = Matcher{}
	}
	return nil
}

// ReadDefinition loads a hook.json file.
func ReadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hook definition: %w", err)
	}
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse hook definition %s: %w", path, err)
	}
	return &d, nil
}

// EncodeDefinition renders a definition as indented hook.json content.
func EncodeDefinition(d *Definition) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal hook definition: %w", err)
	}
	return append(data, '\n'), nil
}
