package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hserrors "github.com/randalmurphal/hooksmith/internal/errors"
	"github.com/randalmurphal/hooksmith/internal/hook"
)

func testStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := t.TempDir()
	all := append([]Option{
		WithUserDir(filepath.Join(base, "user")),
		WithProjectDir(filepath.Join(base, "project")),
	}, opts...)
	return NewStore(all...)
}

func testEntry(name string) Entry {
	return EntryFromDefinition(&hook.Definition{
		Event:   hook.PostToolUse,
		Matcher: hook.Matcher{Tools: []string{"Edit"}},
		Actions: []hook.Action{{Type: hook.ActionTypeCommand, Command: "git add -A || true", Timeout: 5}},
		Meta:    hook.Metadata{GeneratedBy: "test", HookName: name},
	})
}

func TestParseScope(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Scope
	}{
		{"user", ScopeUser},
		{"USER", ScopeUser},
		{"project", ScopeProject},
	} {
		got, err := ParseScope(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseScope("global")
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeInvalidScope))
}

func TestLoad_MissingFileIsEmptyDocument(t *testing.T) {
	s := testStore(t)
	doc, err := s.Load(ScopeUser)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Count())
}

func TestLoad_CorruptFile(t *testing.T) {
	s := testStore(t)
	path := s.Path(ScopeUser)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := s.Load(ScopeUser)
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeConfigCorrupt))

	// The corrupt file must be untouched.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{broken", string(data))
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	s := testStore(t)

	doc := NewDocument()
	doc.Append(hook.PostToolUse, testEntry("git-add"))
	doc.Append(hook.PostToolUse, testEntry("formatter-go"))
	doc.Append(hook.Stop, testEntry("notifier"))
	require.NoError(t, s.Write(ScopeProject, doc))

	got, err := s.Load(ScopeProject)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count())

	// Order within an event type is preserved.
	entries := got.Entries(hook.PostToolUse)
	require.Len(t, entries, 2)
	assert.Equal(t, "git-add", entries[0].Meta.HookName)
	assert.Equal(t, "formatter-go", entries[1].Meta.HookName)
}

func TestWrite_PreservesUnmanagedKeys(t *testing.T) {
	s := testStore(t)
	path := s.Path(ScopeProject)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	existing := `{
  "env": {"FOO": "bar"},
  "permissions": {"allow": ["Bash(git:*)"]},
  "hooks": {}
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	doc, err := s.Load(ScopeProject)
	require.NoError(t, err)
	doc.Append(hook.Stop, testEntry("notifier"))
	require.NoError(t, s.Write(ScopeProject, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `{"FOO": "bar"}`, string(raw["env"]))
	assert.JSONEq(t, `{"allow": ["Bash(git:*)"]}`, string(raw["permissions"]))
	assert.Contains(t, string(raw["hooks"]), "notifier")
}

func TestWrite_BackupBound(t *testing.T) {
	// After N+1 writes over an existing file, exactly N backups remain
	// and they are the N most recent.
	clock := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	s := testStore(t, WithRetainBackups(3), withClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	doc := NewDocument()
	require.NoError(t, s.Write(ScopeUser, doc)) // first write: no file yet, no backup

	for i := 0; i < 4; i++ {
		doc.Append(hook.Stop, testEntry("notifier"))
		require.NoError(t, s.Write(ScopeUser, doc))
	}

	backups, err := s.Backups(ScopeUser)
	require.NoError(t, err)
	require.Len(t, backups, 3)

	// Newest first, and the retained stamps are the latest three.
	assert.Greater(t, backups[0].Stamp, backups[1].Stamp)
	assert.Greater(t, backups[1].Stamp, backups[2].Stamp)
	assert.Equal(t, "20260801-100004.000", backups[0].Stamp)
	assert.Equal(t, "20260801-100002.000", backups[2].Stamp)
}

func TestWrite_FirstWriteCreatesNoBackup(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write(ScopeUser, NewDocument()))

	backups, err := s.Backups(ScopeUser)
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestWrite_BackupIsVerbatimCopy(t *testing.T) {
	s := testStore(t)
	path := s.Path(ScopeUser)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	original := `{"hooks": {}, "custom": 1}`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	doc, err := s.Load(ScopeUser)
	require.NoError(t, err)
	require.NoError(t, s.Write(ScopeUser, doc))

	backups, err := s.Backups(ScopeUser)
	require.NoError(t, err)
	require.Len(t, backups, 1)

	data, err := os.ReadFile(backups[0].Path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestRollback(t *testing.T) {
	s := testStore(t)

	doc := NewDocument()
	doc.Append(hook.Stop, testEntry("notifier"))
	require.NoError(t, s.Write(ScopeUser, doc))

	doc.Append(hook.Stop, testEntry("second"))
	require.NoError(t, s.Write(ScopeUser, doc)) // snapshots the one-hook state

	require.NoError(t, s.Rollback(ScopeUser))

	got, err := s.Load(ScopeUser)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count())
	assert.True(t, got.Has(hook.Stop, "notifier"))
}

func TestRollback_NoBackups(t *testing.T) {
	s := testStore(t)
	err := s.Rollback(ScopeProject)
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeNoBackup))
}

func TestWrite_FailureLeavesFileIntact(t *testing.T) {
	s := testStore(t)
	doc := NewDocument()
	doc.Append(hook.Stop, testEntry("notifier"))
	require.NoError(t, s.Write(ScopeUser, doc))

	before, err := os.ReadFile(s.Path(ScopeUser))
	require.NoError(t, err)

	// Read-only scope directory: the backup copy (and any temp file)
	// cannot be created, so Write must fail without touching the target.
	require.NoError(t, os.Chmod(filepath.Dir(s.Path(ScopeUser)), 0o555))
	t.Cleanup(func() { _ = os.Chmod(filepath.Dir(s.Path(ScopeUser)), 0o755) })

	doc.Append(hook.Stop, testEntry("second"))
	require.Error(t, s.Write(ScopeUser, doc))

	require.NoError(t, os.Chmod(filepath.Dir(s.Path(ScopeUser)), 0o755))
	after, err := os.ReadFile(s.Path(ScopeUser))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "failed write modified the settings file")
}

func TestDocument_FindAndRemove(t *testing.T) {
	doc := NewDocument()
	doc.Append(hook.PostToolUse, testEntry("a"))
	doc.Append(hook.Stop, testEntry("b"))

	et, entry, ok := doc.Find("b")
	require.True(t, ok)
	assert.Equal(t, hook.Stop, et)
	assert.Equal(t, "b", entry.Meta.HookName)

	_, _, ok = doc.Find("missing")
	assert.False(t, ok)

	assert.True(t, doc.Remove("a"))
	assert.False(t, doc.Remove("a"))
	assert.Equal(t, 1, doc.Count())
}

func TestWrite_PreservesForeignEntryFields(t *testing.T) {
	// An entry written by another tool may carry fields this tool has
	// no types for. A load/write round trip must keep them and must
	// not graft an empty _metadata block onto the entry.
	s := testStore(t)
	path := s.Path(ScopeProject)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	existing := `{
  "hooks": {
    "Stop": [
      {"description": "ring bell", "enabled": true, "hooks": [{"type": "command", "command": "printf '\\a'", "timeout": 1}]}
    ]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	doc, err := s.Load(ScopeProject)
	require.NoError(t, err)
	doc.Append(hook.PostToolUse, testEntry("git-add"))
	require.NoError(t, s.Write(ScopeProject, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"description"`)
	assert.Contains(t, string(data), `"enabled"`)
	assert.NotContains(t, string(data), `"generated_by": ""`)

	// And the typed view still decodes the foreign entry.
	reloaded, err := s.Load(ScopeProject)
	require.NoError(t, err)
	entries := reloaded.Entries(hook.Stop)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Meta.HookName)
	require.Len(t, entries[0].Hooks, 1)
	assert.Equal(t, "printf '\\a'", entries[0].Hooks[0].Command)
}

func TestDocument_PreservesUnknownEventSections(t *testing.T) {
	// Hook sections written by other tools under event types this tool
	// does not manage must survive a round trip untouched.
	var doc Document
	input := `{"hooks": {"Notification": [{"hooks": [{"type": "command", "command": "true", "timeout": 1}]}]}}`
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	doc.Append(hook.Stop, testEntry("mine"))
	require.False(t, doc.Remove("unknown-name"))

	out, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Notification")
	assert.Contains(t, string(out), "mine")
}

func TestStoreIsolation_ScopesAreIndependent(t *testing.T) {
	s := testStore(t)

	userDoc := NewDocument()
	userDoc.Append(hook.Stop, testEntry("user-hook"))
	require.NoError(t, s.Write(ScopeUser, userDoc))

	projDoc, err := s.Load(ScopeProject)
	require.NoError(t, err)
	assert.Equal(t, 0, projDoc.Count())
}
