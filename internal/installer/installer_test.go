package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hserrors "github.com/randalmurphal/hooksmith/internal/errors"
	"github.com/randalmurphal/hooksmith/internal/hook"
	"github.com/randalmurphal/hooksmith/internal/settings"
)

func testSetup(t *testing.T) (*Installer, *settings.Store) {
	t.Helper()
	base := t.TempDir()
	store := settings.NewStore(
		settings.WithUserDir(filepath.Join(base, "user")),
		settings.WithProjectDir(filepath.Join(base, "project")),
	)
	return New(store), store
}

func validDefinition(name string) *hook.Definition {
	return &hook.Definition{
		Event:   hook.PostToolUse,
		Matcher: hook.Matcher{Tools: []string{"Edit", "Write"}},
		Actions: []hook.Action{{
			Type:    hook.ActionTypeCommand,
			Command: "git add -A || true",
			Timeout: 10,
		}},
		Meta: hook.Metadata{
			GeneratedBy: "hooksmith",
			EventType:   hook.PostToolUse,
			HookName:    name,
		},
	}
}

func TestInstall(t *testing.T) {
	ins, store := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeProject, validDefinition("git-add"), Options{}))

	doc, err := store.Load(settings.ScopeProject)
	require.NoError(t, err)
	assert.True(t, doc.Has(hook.PostToolUse, "git-add"))
}

func TestInstall_RejectsInvalidDefinition(t *testing.T) {
	ins, store := testSetup(t)

	def := validDefinition("dangerous")
	def.Actions[0].Command = "rm -rf /"

	err := ins.Install(settings.ScopeProject, def, Options{})
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeValidationFailed))
	assert.Contains(t, err.Error(), "denylist")

	// Nothing was written.
	_, statErr := os.Stat(store.Path(settings.ScopeProject))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstall_DuplicateName(t *testing.T) {
	ins, store := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("git-add"), Options{}))

	before, err := os.ReadFile(store.Path(settings.ScopeUser))
	require.NoError(t, err)

	err = ins.Install(settings.ScopeUser, validDefinition("git-add"), Options{})
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeAlreadyInstalled))

	after, err := os.ReadFile(store.Path(settings.ScopeUser))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "rejected install modified the settings file")
}

func TestInstall_DuplicateNameAcrossEvents(t *testing.T) {
	// Names are unique per scope, not per event type.
	ins, _ := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("shared-name"), Options{}))

	other := validDefinition("shared-name")
	other.Event = hook.Stop
	other.Matcher = hook.Matcher{}
	other.Actions[0].Timeout = 5
	other.Meta.EventType = hook.Stop

	err := ins.Install(settings.ScopeUser, other, Options{})
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeAlreadyInstalled))
}

func TestInstall_Replace(t *testing.T) {
	ins, store := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("git-add"), Options{}))

	updated := validDefinition("git-add")
	updated.Actions[0].Timeout = 30
	require.NoError(t, ins.Install(settings.ScopeUser, updated, Options{Replace: true}))

	doc, err := store.Load(settings.ScopeUser)
	require.NoError(t, err)
	entries := doc.Entries(hook.PostToolUse)
	require.Len(t, entries, 1)
	assert.Equal(t, 30, entries[0].Hooks[0].Timeout)
}

func TestInstall_ReplaceMovesAcrossEvents(t *testing.T) {
	// Replacing a name installed under a different event type removes
	// the old entry; the name never exists twice.
	ins, store := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("mover"), Options{}))

	moved := validDefinition("mover")
	moved.Event = hook.Stop
	moved.Matcher = hook.Matcher{}
	moved.Actions[0].Timeout = 5
	moved.Meta.EventType = hook.Stop
	require.NoError(t, ins.Install(settings.ScopeUser, moved, Options{Replace: true}))

	doc, err := store.Load(settings.ScopeUser)
	require.NoError(t, err)
	assert.Empty(t, doc.Entries(hook.PostToolUse))
	assert.True(t, doc.Has(hook.Stop, "mover"))
}

func TestInstall_PreservesForeignEntries(t *testing.T) {
	ins, store := testSetup(t)
	path := store.Path(settings.ScopeProject)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	existing := `{
  "env": {"CI": "1"},
  "hooks": {
    "PostToolUse": [
      {"matcher": {"tools": ["Edit"]}, "enabled": true, "hooks": [{"type": "command", "command": "true"}]}
    ]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	require.NoError(t, ins.Install(settings.ScopeProject, validDefinition("git-add"), Options{}))

	doc, err := store.Load(settings.ScopeProject)
	require.NoError(t, err)
	entries := doc.Entries(hook.PostToolUse)
	require.Len(t, entries, 2)
	assert.Equal(t, "", entries[0].Meta.HookName, "foreign entry should keep its position")
	assert.Equal(t, "git-add", entries[1].Meta.HookName)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"CI": "1"`)

	// The foreign entry's own fields survive the install, and no
	// fabricated _metadata is attached to it.
	assert.Contains(t, string(data), `"enabled"`)
	assert.NotContains(t, string(data), `"generated_by": ""`)
}

func TestInstall_CorruptSettingsSurfaces(t *testing.T) {
	ins, store := testSetup(t)
	path := store.Path(settings.ScopeUser)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	err := ins.Install(settings.ScopeUser, validDefinition("git-add"), Options{})
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeConfigCorrupt))

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "not json", string(data))
}

func TestUninstall(t *testing.T) {
	ins, store := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeProject, validDefinition("git-add"), Options{}))
	require.NoError(t, ins.Uninstall(settings.ScopeProject, "git-add"))

	doc, err := store.Load(settings.ScopeProject)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Count())
}

func TestUninstall_NotFound(t *testing.T) {
	ins, store := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeProject, validDefinition("git-add"), Options{}))
	before, err := os.ReadFile(store.Path(settings.ScopeProject))
	require.NoError(t, err)

	err = ins.Uninstall(settings.ScopeProject, "no-such-hook")
	require.Error(t, err)
	assert.True(t, hserrors.HasCode(err, hserrors.CodeHookNotFound))

	after, err := os.ReadFile(store.Path(settings.ScopeProject))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "failed uninstall modified the settings file")
}

func TestUninstall_RemovesOnlyNamedEntry(t *testing.T) {
	ins, store := testSetup(t)

	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("first"), Options{}))
	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("second"), Options{}))
	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("third"), Options{}))

	require.NoError(t, ins.Uninstall(settings.ScopeUser, "second"))

	doc, err := store.Load(settings.ScopeUser)
	require.NoError(t, err)
	entries := doc.Entries(hook.PostToolUse)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Meta.HookName)
	assert.Equal(t, "third", entries[1].Meta.HookName)
}

func TestList(t *testing.T) {
	ins, _ := testSetup(t)

	stop := validDefinition("notifier")
	stop.Event = hook.Stop
	stop.Matcher = hook.Matcher{}
	stop.Actions[0].Command = `printf '\a' || true`
	stop.Actions[0].Timeout = 5
	stop.Meta.EventType = hook.Stop

	require.NoError(t, ins.Install(settings.ScopeUser, validDefinition("git-add"), Options{}))
	require.NoError(t, ins.Install(settings.ScopeUser, stop, Options{}))

	list, err := ins.List(settings.ScopeUser)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Catalog order: PostToolUse before Stop.
	assert.Equal(t, hook.PostToolUse, list[0].Event)
	assert.Equal(t, "git-add", list[0].Name)
	assert.Equal(t, 10, list[0].Timeout)
	assert.Equal(t, hook.Stop, list[1].Event)
	assert.Equal(t, "notifier", list[1].Name)
}

func TestList_EmptyScope(t *testing.T) {
	ins, _ := testSetup(t)

	list, err := ins.List(settings.ScopeProject)
	require.NoError(t, err)
	assert.Empty(t, list)
}
