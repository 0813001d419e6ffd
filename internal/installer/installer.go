// Package installer merges validated hook definitions into the shared
// settings files and removes them again. It is the only writer of the
// hooks sections; all reads and writes go through the settings store so
// every mutation gets the same backup and atomic-rename treatment.
package installer

import (
	"fmt"
	"log/slog"
	"strings"

	hserrors "github.com/randalmurphal/hooksmith/internal/errors"
	"github.com/randalmurphal/hooksmith/internal/hook"
	"github.com/randalmurphal/hooksmith/internal/safety"
	"github.com/randalmurphal/hooksmith/internal/settings"
)

// Installer installs and uninstalls hooks in the settings store.
type Installer struct {
	store *settings.Store
}

// New creates an installer backed by the given store.
func New(store *settings.Store) *Installer {
	return &Installer{store: store}
}

// Options control install behavior.
type Options struct {
	// Replace overwrites an existing entry with the same hook name
	// instead of failing with ALREADY_INSTALLED.
	Replace bool
}

// Install validates def and appends it to the scope's settings file.
// The definition is re-validated even if it came from a trusted
// generator: nothing unvalidated ever reaches a settings file. Hook
// names are unique per scope; an existing entry under any event type
// with the same name is a conflict unless opts.Replace is set.
func (ins *Installer) Install(scope settings.Scope, def *hook.Definition, opts Options) error {
	if result := safety.Validate(def); !result.OK {
		e := hserrors.ErrValidationFailed(def.Name(), len(result.Failures))
		e.Why = failureSummary(result)
		return e
	}

	doc, err := ins.store.Load(scope)
	if err != nil {
		return err
	}

	if et, _, ok := doc.Find(def.Name()); ok {
		if !opts.Replace {
			return hserrors.ErrAlreadyInstalled(def.Name(), string(et))
		}
		doc.Remove(def.Name())
	}

	doc.Append(def.Event, settings.EntryFromDefinition(def))
	if err := ins.store.Write(scope, doc); err != nil {
		return err
	}

	slog.Info("hook installed", "name", def.Name(), "event", def.Event, "scope", scope)
	return nil
}

// Uninstall removes the hook named name from the scope's settings
// file. Entries written by other tools are never touched: only the
// named entry is removed, and everything else in the file survives
// byte for byte.
func (ins *Installer) Uninstall(scope settings.Scope, name string) error {
	doc, err := ins.store.Load(scope)
	if err != nil {
		return err
	}

	if !doc.Remove(name) {
		return hserrors.ErrHookNotFound(name, string(scope))
	}

	if err := ins.store.Write(scope, doc); err != nil {
		return err
	}

	slog.Info("hook uninstalled", "name", name, "scope", scope)
	return nil
}

// Summary describes one installed hook for listing.
type Summary struct {
	Event       hook.EventType `json:"event"`
	Name        string         `json:"name"`
	Command     string         `json:"command"`
	Timeout     int            `json:"timeout"`
	GeneratedBy string         `json:"generated_by,omitempty"`
}

// List returns the scope's installed hooks in settings-file order:
// event types in catalog order, entries in their stored order within
// each event. Entries without a hook name (written by other tools)
// are listed with a placeholder name so nothing is hidden.
func (ins *Installer) List(scope settings.Scope) ([]Summary, error) {
	doc, err := ins.store.Load(scope)
	if err != nil {
		return nil, err
	}

	var out []Summary
	for _, spec := range hook.Events() {
		for i, e := range doc.Entries(spec.Type) {
			s := Summary{
				Event:       spec.Type,
				Name:        e.Meta.HookName,
				GeneratedBy: e.Meta.GeneratedBy,
			}
			if s.Name == "" {
				s.Name = fmt.Sprintf("(unmanaged #%d)", i+1)
			}
			if len(e.Hooks) > 0 {
				s.Command = e.Hooks[0].Command
				s.Timeout = e.Hooks[0].Timeout
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func failureSummary(result safety.Result) string {
	parts := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Rule, f.Message))
	}
	return strings.Join(parts, "; ")
}
