package cli

import (
	"os"
	"path/filepath"
	"testing"
)

const validHookJSON = `{
  "matcher": {"tools": ["Edit", "Write"]},
  "hooks": [{"type": "command", "command": "git add -A || true", "timeout": 10}],
  "_metadata": {"generated_by": "hooksmith", "event_type": "PostToolUse", "hook_name": "git-add"}
}`

const invalidHookJSON = `{
  "matcher": {"tools": ["Edit"]},
  "hooks": [{"type": "command", "command": "git push --force || true", "timeout": 10}],
  "_metadata": {"generated_by": "hooksmith", "event_type": "PostToolUse", "hook_name": "pusher"}
}`

func writeHookFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hook.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateCmd_ValidFile(t *testing.T) {
	cmd := newValidateCmd()
	cmd.SetArgs([]string{writeHookFile(t, validHookJSON)})
	if err := cmd.Execute(); err != nil {
		t.Errorf("expected exit 0 for a valid definition, got: %v", err)
	}
}

func TestValidateCmd_InvalidFile(t *testing.T) {
	cmd := newValidateCmd()
	cmd.SetArgs([]string{writeHookFile(t, invalidHookJSON)})
	if err := cmd.Execute(); err == nil {
		t.Error("expected a non-nil error for a denylisted command")
	}
}

func TestValidateCmd_MissingFile(t *testing.T) {
	cmd := newValidateCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.json")})
	if err := cmd.Execute(); err == nil {
		t.Error("expected a non-nil error for a missing file")
	}
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"tool=black", "args=--quiet ."})
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	if params["tool"] != "black" || params["args"] != "--quiet ." {
		t.Errorf("unexpected params: %v", params)
	}

	if _, err := parseParams([]string{"noequals"}); err == nil {
		t.Error("expected an error for a flag without '='")
	}
	if _, err := parseParams([]string{"=value"}); err == nil {
		t.Error("expected an error for an empty key")
	}
	if params, _ := parseParams(nil); params != nil {
		t.Errorf("expected nil for no flags, got %v", params)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a long string that needs cutting", 10); got != "a long ..." {
		t.Errorf("truncate = %q", got)
	}
}
