// Package errors provides structured error types for hooksmith.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for hooksmith.
const (
	// Validation errors
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodePolicyViolation  Code = "POLICY_VIOLATION"

	// Settings errors
	CodeConfigCorrupt Code = "CONFIG_CORRUPT"
	CodeNoBackup      Code = "NO_BACKUP"

	// Installer errors
	CodeAlreadyInstalled Code = "ALREADY_INSTALLED"
	CodeHookNotFound     Code = "HOOK_NOT_FOUND"

	// Template errors
	CodeTemplateNotFound    Code = "TEMPLATE_NOT_FOUND"
	CodeUnsupportedLanguage Code = "UNSUPPORTED_LANGUAGE"
	CodeBadParameter        Code = "BAD_PARAMETER"

	// CLI errors
	CodeInvalidScope Code = "INVALID_SCOPE"
)

// Error is the structured error type for hooksmith.
type Error struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// UserMessage returns a user-friendly message for CLI output.
func (e *Error) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// WithCause returns a copy of the error with the given cause.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}

// AsError attempts to convert an error to a hooksmith Error.
// Returns nil if the error is not one.
func AsError(err error) *Error {
	var he *Error
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// --- Error constructors ---

// ErrValidationFailed returns an error for a hook that failed safety validation.
func ErrValidationFailed(name string, count int) *Error {
	return &Error{
		Code: CodeValidationFailed,
		What: fmt.Sprintf("hook %q failed safety validation", name),
		Why:  fmt.Sprintf("%d rule(s) reported failures", count),
		Fix:  "Run 'hooksmith validate' on the hook definition to see each failing rule",
	}
}

// ErrConfigCorrupt returns an error for an unparseable settings file.
// The file is never modified or overwritten on this path.
func ErrConfigCorrupt(path string, cause error) *Error {
	return &Error{
		Code:  CodeConfigCorrupt,
		What:  fmt.Sprintf("settings file %s is not valid JSON", path),
		Why:   "Refusing to merge into a file that cannot be parsed; doing so could destroy hand-edited configuration",
		Fix:   fmt.Sprintf("Fix the JSON by hand, or restore a backup with 'hooksmith rollback'. The file at %s has not been touched", path),
		Cause: cause,
	}
}

// ErrNoBackup returns an error when rollback finds no backup for a scope.
func ErrNoBackup(scope string) *Error {
	return &Error{
		Code: CodeNoBackup,
		What: fmt.Sprintf("no backups exist for %s scope", scope),
		Why:  "Backups are only created when a settings file is overwritten by an install or uninstall",
		Fix:  "Nothing to roll back to; edit the settings file directly if it needs repair",
	}
}

// ErrAlreadyInstalled returns an error when a hook name is already taken
// under the same event type.
func ErrAlreadyInstalled(name, event string) *Error {
	return &Error{
		Code: CodeAlreadyInstalled,
		What: fmt.Sprintf("hook %q is already installed under %s", name, event),
		Why:  "Hook names are stable identifiers and must be unique within a scope",
		Fix:  "Pass --replace to overwrite the existing entry, or pick a different hook name",
	}
}

// ErrHookNotFound returns an error when uninstall finds no matching hook.
func ErrHookNotFound(name, scope string) *Error {
	return &Error{
		Code: CodeHookNotFound,
		What: fmt.Sprintf("hook %q is not installed in %s scope", name, scope),
		Fix:  fmt.Sprintf("Run 'hooksmith list %s' to see installed hooks", scope),
	}
}

// ErrTemplateNotFound returns an error for an unknown template name.
func ErrTemplateNotFound(name string) *Error {
	return &Error{
		Code: CodeTemplateNotFound,
		What: fmt.Sprintf("template %q does not exist", name),
		Fix:  "Run 'hooksmith templates' to list the builtin catalog",
	}
}

// ErrUnsupportedLanguage returns an error when a template has no binding
// for the requested language. A template with no language bindings at
// all gets a message saying so rather than an empty supported list.
func ErrUnsupportedLanguage(template, language string, supported []string) *Error {
	if len(supported) == 0 {
		return &Error{
			Code: CodeUnsupportedLanguage,
			What: fmt.Sprintf("template %q does not take a language", template),
			Why:  fmt.Sprintf("%q was given, but the template has no language bindings", language),
			Fix:  "Drop the --language flag for this template",
		}
	}
	return &Error{
		Code: CodeUnsupportedLanguage,
		What: fmt.Sprintf("template %q has no %s support", template, language),
		Why:  fmt.Sprintf("Supported languages: %s", strings.Join(supported, ", ")),
		Fix:  "Pick a supported language, or supply the substituted values directly with --param",
	}
}

// ErrBadParameter returns an error for a parameter value that could alter
// shell structure when substituted.
func ErrBadParameter(key, value string) *Error {
	return &Error{
		Code: CodeBadParameter,
		What: fmt.Sprintf("parameter %q has an unsafe value", key),
		Why:  fmt.Sprintf("%q contains shell metacharacters; substitution is plain text only and must not introduce new shell constructs", value),
		Fix:  "Remove quotes, semicolons, pipes, grouping characters, backticks and '$' from the value",
	}
}

// ErrMissingParameter returns an error for a template placeholder with
// no bound value.
func ErrMissingParameter(template, key string) *Error {
	return &Error{
		Code: CodeBadParameter,
		What: fmt.Sprintf("template %q needs a value for {{%s}}", template, key),
		Fix:  fmt.Sprintf("Supply it with --param %s=<value>, or pick a language that binds it", key),
	}
}

// ErrUnknownParameter returns an error for a parameter the template has
// no placeholder for.
func ErrUnknownParameter(template, key string) *Error {
	return &Error{
		Code: CodeBadParameter,
		What: fmt.Sprintf("template %q has no parameter %q", template, key),
		Fix:  "Run 'hooksmith templates' to see each template's parameters",
	}
}

// ErrInvalidScope returns an error for a scope argument that is neither
// "user" nor "project".
func ErrInvalidScope(got string) *Error {
	return &Error{
		Code: CodeInvalidScope,
		What: fmt.Sprintf("invalid scope %q", got),
		Why:  "Settings exist at exactly two scopes",
		Fix:  "Use 'user' (applies everywhere) or 'project' (this repository only)",
	}
}
