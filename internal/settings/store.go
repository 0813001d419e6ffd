package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	hserrors "github.com/randalmurphal/hooksmith/internal/errors"
	"github.com/randalmurphal/hooksmith/internal/util"
)

// Scope selects which settings document an operation targets. The two
// scopes are independent files; nothing ever merges across them.
type Scope string

const (
	// ScopeUser is the per-user settings file, applied to all projects.
	ScopeUser Scope = "user"
	// ScopeProject is the per-repository settings file.
	ScopeProject Scope = "project"
)

// ParseScope converts a CLI argument into a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(s)) {
	case ScopeUser:
		return ScopeUser, nil
	case ScopeProject:
		return ScopeProject, nil
	default:
		return "", hserrors.ErrInvalidScope(s)
	}
}

// SettingsFileName is the host settings file name within a scope dir.
const SettingsFileName = "settings.json"

// backupDirName is the backup directory name within a scope dir.
const backupDirName = "backups"

// DefaultRetainBackups is how many backups are kept per scope.
const DefaultRetainBackups = 5

// backupStampFormat is the sortable timestamp suffix on backup files.
const backupStampFormat = "20060102-150405.000"

// Store reads and writes the settings documents for both scopes. It is
// the only component that touches the settings files or their backups.
type Store struct {
	userDir    string
	projectDir string
	retain     int
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithUserDir overrides the user scope directory (default ~/.claude).
func WithUserDir(dir string) Option {
	return func(s *Store) { s.userDir = dir }
}

// WithProjectDir overrides the project scope directory (default .claude).
func WithProjectDir(dir string) Option {
	return func(s *Store) { s.projectDir = dir }
}

// WithRetainBackups overrides how many backups are kept per scope.
func WithRetainBackups(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retain = n
		}
	}
}

// withClock overrides the backup timestamp source, for tests.
func withClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a settings store. Without options the user scope is
// ~/.claude and the project scope is .claude in the working directory.
func NewStore(opts ...Option) *Store {
	s := &Store{
		projectDir: ".claude",
		retain:     DefaultRetainBackups,
		now:        time.Now,
	}
	if home, err := os.UserHomeDir(); err == nil {
		s.userDir = filepath.Join(home, ".claude")
	} else {
		s.userDir = ".claude-user"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dir returns the scope's directory.
func (s *Store) dir(scope Scope) string {
	if scope == ScopeUser {
		return s.userDir
	}
	return s.projectDir
}

// Path returns the settings file path for a scope.
func (s *Store) Path(scope Scope) string {
	return filepath.Join(s.dir(scope), SettingsFileName)
}

// backupDir returns the backup directory for a scope.
func (s *Store) backupDir(scope Scope) string {
	return filepath.Join(s.dir(scope), backupDirName)
}

// Load parses the settings document for a scope. A missing file is an
// empty document, not an error. A file that exists but does not parse
// is a CONFIG_CORRUPT error; it is never discarded or overwritten.
func (s *Store) Load(scope Scope) (*Document, error) {
	path := s.Path(scope)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, hserrors.ErrConfigCorrupt(path, err)
	}
	return &doc, nil
}

// Write replaces the scope's settings file with doc. Sequence: verify
// doc serializes cleanly, snapshot the existing file into the backup
// directory, prune backups beyond the retention bound, then write the
// new content to a temp file and rename it over the target. On any
// failure the previous file is untouched.
func (s *Store) Write(scope Scope, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings document: %w", err)
	}
	data = append(data, '\n')

	path := s.Path(scope)
	if _, err := os.Stat(path); err == nil {
		if err := s.backup(scope, path); err != nil {
			return fmt.Errorf("backup before write: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat settings %s: %w", path, err)
	}

	if err := util.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}

	slog.Debug("settings written", "scope", scope, "path", path, "hooks", doc.Count())
	return nil
}

// backup copies the current settings file into the backup directory
// with a timestamp suffix, then prunes the oldest backups beyond the
// retention bound.
func (s *Store) backup(scope Scope, path string) error {
	stamp := s.now().UTC().Format(backupStampFormat)
	name := fmt.Sprintf("settings-%s.json", stamp)
	dst := filepath.Join(s.backupDir(scope), name)

	// A second write within the same millisecond lands on the same
	// stamp; disambiguate rather than fail the copy.
	for i := 1; ; i++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(s.backupDir(scope), fmt.Sprintf("settings-%s-%d.json", stamp, i))
	}

	if err := util.CopyFile(path, dst, 0644); err != nil {
		return err
	}
	return s.prune(scope)
}

// prune removes the oldest backups beyond the retention bound.
func (s *Store) prune(scope Scope) error {
	backups, err := s.Backups(scope)
	if err != nil {
		return err
	}
	for _, b := range backups[min(s.retain, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			slog.Warn("failed to prune backup", "path", b.Path, "error", err)
		}
	}
	return nil
}

// BackupInfo describes one retained backup file.
type BackupInfo struct {
	Path  string `json:"path"`
	Stamp string `json:"stamp"`
}

// Backups lists the scope's retained backups, newest first.
func (s *Store) Backups(scope Scope) ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir(scope))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "settings-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:  filepath.Join(s.backupDir(scope), name),
			Stamp: strings.TrimSuffix(strings.TrimPrefix(name, "settings-"), ".json"),
		})
	}

	// The stamp format sorts lexically; newest first.
	sort.Slice(backups, func(i, j int) bool { return backups[i].Stamp > backups[j].Stamp })
	return backups, nil
}

// Rollback restores the most recent backup over the scope's settings
// file using the same atomic-rename path as Write. The backup file
// itself is kept.
func (s *Store) Rollback(scope Scope) error {
	backups, err := s.Backups(scope)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return hserrors.ErrNoBackup(string(scope))
	}

	newest := backups[0]
	data, err := os.ReadFile(newest.Path)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", newest.Path, err)
	}

	if err := util.WriteFileAtomic(s.Path(scope), data, 0644); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	slog.Info("settings restored from backup", "scope", scope, "backup", newest.Path)
	return nil
}
