// Package cli implements the hooksmith command-line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	hserrors "github.com/randalmurphal/hooksmith/internal/errors"
	"github.com/randalmurphal/hooksmith/internal/settings"
)

// Helper functions

// newStore builds the settings store from config. The directory
// overrides exist for sandboxes and tests; normal use leaves them
// unset and gets ~/.claude and .claude.
func newStore() *settings.Store {
	var opts []settings.Option
	if dir := viper.GetString("settings.user_dir"); dir != "" {
		opts = append(opts, settings.WithUserDir(dir))
	}
	if dir := viper.GetString("settings.project_dir"); dir != "" {
		opts = append(opts, settings.WithProjectDir(dir))
	}
	if n := viper.GetInt("backup.retain"); n > 0 {
		opts = append(opts, settings.WithRetainBackups(n))
	}
	return settings.NewStore(opts...)
}

// outputDir returns the generated-hooks directory from config.
func outputDir() string {
	return viper.GetString("output.dir")
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportedError marks an error whose message already went to stderr,
// so Execute does not print it a second time.
type reportedError struct{ err error }

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }

func wasReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// reportError prints err to stderr and returns it for the exit code.
// Structured errors get their full What/Why/Fix message; the root
// command silences cobra's own error printing so this is the only
// place command errors reach the user.
func reportError(err error) error {
	if err == nil {
		return nil
	}
	if he := hserrors.AsError(err); he != nil {
		fmt.Fprintln(os.Stderr, he.UserMessage())
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return reportedError{err: err}
}

// interactive reports whether stdout is a terminal. Follow-up hints
// are only printed interactively so piped output stays parseable.
func interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
