// Package settings provides durable, crash-safe storage of the host's
// settings document at the user and project scopes. The settings file
// is owned by this package: every mutation flows through Store.Write,
// which backs up the previous file and replaces it atomically.
package settings

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/randalmurphal/hooksmith/internal/hook"
)

// Entry is one installed hook under an event type in the settings file.
// Entries loaded from disk keep their original bytes: an entry written
// by another tool may carry fields this tool has no types for, and
// re-serializing it through the typed view would drop them. Marshal
// re-emits the original bytes whenever they exist.
type Entry struct {
	Matcher *hook.Matcher
	Hooks   []hook.Action
	Meta    hook.Metadata

	raw json.RawMessage
}

// entryFile is the wire shape of one entry.
type entryFile struct {
	Matcher *hook.Matcher `json:"matcher,omitempty"`
	Hooks   []hook.Action `json:"hooks"`
	Meta    hook.Metadata `json:"_metadata"`
}

// UnmarshalJSON decodes the typed view and keeps the original bytes.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var f entryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	e.Matcher = f.Matcher
	e.Hooks = f.Hooks
	e.Meta = f.Meta
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits loaded entries verbatim; entries created in this
// process serialize from the typed fields.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(entryFile{Matcher: e.Matcher, Hooks: e.Hooks, Meta: e.Meta})
}

// EntryFromDefinition converts a validated definition into its settings
// file form.
func EntryFromDefinition(d *hook.Definition) Entry {
	e := Entry{Hooks: d.Actions, Meta: d.Meta}
	e.Meta.EventType = d.Event
	if !d.Matcher.IsEmpty() {
		m := d.Matcher
		e.Matcher = &m
	}
	return e
}

// Document is the parsed settings file for one scope. Hook entries are
// ordered within each event type — the host runs them in stored order —
// and every top-level key this tool does not manage (env, permissions,
// mcpServers, ...) is preserved byte for byte across a load/write
// round trip. The settings file is shared with other producers; losing
// their keys would be data loss.
type Document struct {
	Hooks map[hook.EventType][]Entry
	extra map[string]json.RawMessage
}

// NewDocument returns an empty settings document.
func NewDocument() *Document {
	return &Document{Hooks: make(map[hook.EventType][]Entry)}
}

// UnmarshalJSON decodes the settings file, splitting the managed hooks
// key from everything else.
func (doc *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	doc.Hooks = make(map[hook.EventType][]Entry)
	doc.extra = make(map[string]json.RawMessage)
	for key, val := range raw {
		if key != "hooks" {
			doc.extra[key] = val
			continue
		}
		if err := json.Unmarshal(val, &doc.Hooks); err != nil {
			return fmt.Errorf("hooks section: %w", err)
		}
	}
	return nil
}

// MarshalJSON re-serializes the document with event keys in sorted
// order so repeated writes of equal state are byte-identical.
func (doc *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(doc.extra)+1)
	for key, val := range doc.extra {
		out[key] = val
	}

	if len(doc.Hooks) > 0 {
		hooks := make(map[string][]Entry, len(doc.Hooks))
		for et, entries := range doc.Hooks {
			if len(entries) > 0 {
				hooks[string(et)] = entries
			}
		}
		data, err := json.Marshal(hooks)
		if err != nil {
			return nil, err
		}
		out["hooks"] = data
	}

	keys := make([]string, 0, len(out))
	for key := range out {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Assemble by hand: encoding/json sorts map keys too, but an
	// explicit pass keeps the ordering contract visible and stable.
	buf := []byte{'{'}
	for i, key := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, name...)
		buf = append(buf, ':')
		buf = append(buf, out[key]...)
	}
	return append(buf, '}'), nil
}

// Entries returns the ordered hook entries for an event type.
func (doc *Document) Entries(et hook.EventType) []Entry {
	return doc.Hooks[et]
}

// Find locates the first entry named name across all event types, in
// catalog order. Hook names are treated as unique per scope.
func (doc *Document) Find(name string) (hook.EventType, *Entry, bool) {
	for _, spec := range hook.Events() {
		for i := range doc.Hooks[spec.Type] {
			if doc.Hooks[spec.Type][i].Meta.HookName == name {
				return spec.Type, &doc.Hooks[spec.Type][i], true
			}
		}
	}
	return "", nil, false
}

// Has reports whether an entry named name exists under the event type.
func (doc *Document) Has(et hook.EventType, name string) bool {
	for _, e := range doc.Hooks[et] {
		if e.Meta.HookName == name {
			return true
		}
	}
	return false
}

// Append adds an entry at the end of the event type's ordered list.
func (doc *Document) Append(et hook.EventType, e Entry) {
	if doc.Hooks == nil {
		doc.Hooks = make(map[hook.EventType][]Entry)
	}
	doc.Hooks[et] = append(doc.Hooks[et], e)
}

// Remove deletes the first entry named name across all event types and
// reports whether anything was removed. Relative order of the remaining
// entries is preserved.
func (doc *Document) Remove(name string) bool {
	for _, spec := range hook.Events() {
		entries := doc.Hooks[spec.Type]
		for i := range entries {
			if entries[i].Meta.HookName == name {
				doc.Hooks[spec.Type] = append(entries[:i:i], entries[i+1:]...)
				if len(doc.Hooks[spec.Type]) == 0 {
					delete(doc.Hooks, spec.Type)
				}
				return true
			}
		}
	}
	return false
}

// Count returns the total number of installed hook entries.
func (doc *Document) Count() int {
	n := 0
	for _, entries := range doc.Hooks {
		n += len(entries)
	}
	return n
}
