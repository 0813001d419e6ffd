// Package safety decides whether a hook definition is safe to install.
//
// Validation is pure pattern analysis over the literal definition: no
// I/O, and command strings are never executed or shell-interpreted.
// Interpretation is strictly the host runtime's job.
package safety

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/randalmurphal/hooksmith/internal/hook"
)

// Rule identifies which check a failure came from.
type Rule string

const (
	RuleStructure     Rule = "structure"
	RuleDenylist      Rule = "denylist"
	RuleToolGuard     Rule = "tool-guard"
	RuleSilentFailure Rule = "silent-failure"
	RulePathSafety    Rule = "path-safety"
	RuleTimeout       Rule = "timeout"
)

// Failure is one violated rule with a human-readable explanation.
type Failure struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// Result is the outcome of validating one definition. There is no
// partial pass: a definition with any failure is not installable.
type Result struct {
	OK       bool      `json:"ok"`
	Failures []Failure `json:"failures,omitempty"`
}

func (r *Result) failf(rule Rule, format string, args ...any) {
	r.OK = false
	r.Failures = append(r.Failures, Failure{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// hookNamePattern constrains hook names to stable, filesystem-safe
// identifiers.
var hookNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// toolNamePattern matches host tool names (Edit, Write, Bash, ...).
var toolNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// branchPattern matches git branch names and simple branch globs.
var branchPattern = regexp.MustCompile(`^[A-Za-z0-9._/*-]+$`)

// Validate runs every safety check against the definition and returns
// the full list of failures. It is a pure function: calling it twice on
// the same definition yields identical results.
func Validate(d *hook.Definition) Result {
	res := Result{OK: true}

	spec, known := hook.EventSpecFor(d.Event)
	if !known {
		res.failf(RuleStructure, "unknown event type %q; valid types: %v", d.Event, hook.EventTypeNames())
	}

	if d.Meta.HookName == "" {
		res.failf(RuleStructure, "hook name is required")
	} else if !hookNamePattern.MatchString(d.Meta.HookName) {
		res.failf(RuleStructure, "hook name %q must be lowercase alphanumeric with . _ - separators", d.Meta.HookName)
	}

	if len(d.Actions) == 0 {
		res.failf(RuleStructure, "at least one action is required")
	}
	for i, a := range d.Actions {
		if a.Type != hook.ActionTypeCommand {
			res.failf(RuleStructure, "action %d has type %q; only %q is supported", i, a.Type, hook.ActionTypeCommand)
		}
		if a.Command == "" {
			res.failf(RuleStructure, "action %d has an empty command", i)
		}
	}

	if known {
		checkMatcher(&res, spec, d.Matcher)
		checkTimeouts(&res, spec, d.Actions)
	}

	for i, a := range d.Actions {
		if a.Command == "" {
			continue
		}
		checkDenylist(&res, i, a.Command)
		checkToolGuards(&res, i, a.Command)
		if known {
			checkSilentFailure(&res, spec, i, a.Command)
		}
		checkPathSafety(&res, i, a.Command)
	}

	return res
}

// checkMatcher enforces the event type's matcher policy and the shape
// of each filter.
func checkMatcher(res *Result, spec hook.EventSpec, m hook.Matcher) {
	switch spec.Matcher {
	case hook.MatcherEmpty:
		if !m.IsEmpty() {
			res.failf(RuleStructure, "%s fires unconditionally and must have an empty matcher", spec.Type)
			return
		}
	case hook.MatcherRequired:
		if !m.HasToolOrPathFilter() {
			res.failf(RuleStructure, "%s requires at least a tool or path filter", spec.Type)
		}
	}

	// Per-event filter shapes.
	switch spec.Type {
	case hook.PreToolUse, hook.PostToolUse:
		if m.Content != "" || len(m.Branches) > 0 {
			res.failf(RuleStructure, "%s accepts only tool and path filters", spec.Type)
		}
	case hook.UserPromptSubmit:
		if m.HasToolOrPathFilter() || len(m.Branches) > 0 {
			res.failf(RuleStructure, "%s accepts only a content filter", spec.Type)
		}
	case hook.PrePush:
		if m.HasToolOrPathFilter() || m.Content != "" {
			res.failf(RuleStructure, "%s accepts only a branch filter", spec.Type)
		}
	}

	for _, tool := range m.Tools {
		if !toolNamePattern.MatchString(tool) {
			res.failf(RuleStructure, "tool filter %q is not a valid tool name", tool)
		}
	}
	for _, pattern := range m.Paths {
		if !doublestar.ValidatePattern(pattern) {
			res.failf(RuleStructure, "path filter %q is not a valid glob pattern", pattern)
		}
	}
	for _, branch := range m.Branches {
		if !branchPattern.MatchString(branch) {
			res.failf(RuleStructure, "branch filter %q is not a valid branch pattern", branch)
		}
	}
	if m.Content != "" {
		if _, err := regexp.Compile(m.Content); err != nil {
			res.failf(RuleStructure, "content filter does not compile as a regular expression: %v", err)
		}
	}
}

// checkTimeouts enforces the closed per-event timeout range.
func checkTimeouts(res *Result, spec hook.EventSpec, actions []hook.Action) {
	for i, a := range actions {
		if a.Timeout < spec.MinTimeout || a.Timeout > spec.MaxTimeout {
			res.failf(RuleTimeout, "action %d timeout %ds is outside the %s range of %d-%ds",
				i, a.Timeout, spec.Type, spec.MinTimeout, spec.MaxTimeout)
		}
	}
}
