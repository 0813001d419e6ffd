// Package status aggregates read-only state from the generated-hooks
// output directory and the settings store into a single report: which
// hooks exist, whether they validate, where they are installed, and
// what to do next. It never writes anything.
package status

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/hooksmith/internal/hook"
	"github.com/randalmurphal/hooksmith/internal/safety"
	"github.com/randalmurphal/hooksmith/internal/settings"
)

// HookDefinitionFile is the definition file name inside each generated
// hook directory.
const HookDefinitionFile = "hook.json"

// TestResultFile is an optional marker dropped next to hook.json by an
// external test harness. Only its top-level "passed" field is read.
const TestResultFile = "test-result.json"

// scanConcurrency bounds parallel definition reads during a scan.
const scanConcurrency = 8

// HookStatus is the per-hook aggregation.
type HookStatus struct {
	Name      string         `json:"name"`
	Event     hook.EventType `json:"event,omitempty"`
	Path      string         `json:"path,omitempty"`
	Generated bool           `json:"generated"`
	Validated bool           `json:"validated"`
	Installed []string       `json:"installed,omitempty"`
	Tested    bool           `json:"tested"`
	Problems  []string       `json:"problems,omitempty"`
}

// Report is the full status output.
type Report struct {
	Hooks       []HookStatus   `json:"hooks"`
	Backups     map[string]int `json:"backups"`
	NextActions []string       `json:"next_actions"`
	Scopes      map[string]int `json:"installed_counts"`

	// byName indexes into Hooks; valid only until the final sort.
	byName map[string]int `json:"-"`
}

// Reporter builds status reports.
type Reporter struct {
	outputDir string
	store     *settings.Store
}

// New creates a reporter over the generated-hooks output directory and
// the settings store.
func New(outputDir string, store *settings.Store) *Reporter {
	return &Reporter{outputDir: outputDir, store: store}
}

// Build scans the output directory and both settings scopes and
// assembles the report. A missing output directory is not an error;
// it just means nothing has been generated yet.
func (r *Reporter) Build(ctx context.Context) (*Report, error) {
	report := &Report{
		Backups: make(map[string]int),
		Scopes:  make(map[string]int),
		byName:  make(map[string]int),
	}

	if err := r.scanGenerated(ctx, report); err != nil {
		return nil, err
	}

	for _, scope := range []settings.Scope{settings.ScopeUser, settings.ScopeProject} {
		if err := r.mergeScope(report, scope); err != nil {
			return nil, err
		}
		backups, err := r.store.Backups(scope)
		if err != nil {
			return nil, err
		}
		report.Backups[string(scope)] = len(backups)
	}

	sort.Slice(report.Hooks, func(i, j int) bool { return report.Hooks[i].Name < report.Hooks[j].Name })
	report.NextActions = nextActions(report)
	return report, nil
}

// scanGenerated reads every <dir>/hook.json under the output directory
// concurrently and records generation, validation, and test state.
func (r *Reporter) scanGenerated(ctx context.Context, report *Report) error {
	entries, err := os.ReadDir(r.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read output directory: %w", err)
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.outputDir, entry.Name())
		g.Go(func() error {
			path := filepath.Join(dir, HookDefinitionFile)
			if _, err := os.Stat(path); err != nil {
				return nil // directory without a definition, skip
			}
			hs := scanOne(dir, path)
			mu.Lock()
			report.Hooks = append(report.Hooks, hs)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range report.Hooks {
		report.byName[report.Hooks[i].Name] = i
	}
	return nil
}

// scanOne builds the status of a single generated hook directory.
func scanOne(dir, path string) HookStatus {
	hs := HookStatus{Path: path, Generated: true}

	def, err := hook.ReadDefinition(path)
	if err != nil {
		hs.Name = filepath.Base(dir)
		hs.Problems = append(hs.Problems, fmt.Sprintf("unreadable definition: %v", err))
		return hs
	}

	hs.Name = def.Name()
	if hs.Name == "" {
		hs.Name = filepath.Base(dir)
		hs.Problems = append(hs.Problems, "definition has no hook name in _metadata")
	}
	hs.Event = def.Event

	if result := safety.Validate(def); result.OK {
		hs.Validated = true
	} else {
		for _, f := range result.Failures {
			hs.Problems = append(hs.Problems, fmt.Sprintf("%s: %s", f.Rule, f.Message))
		}
	}

	if data, err := os.ReadFile(filepath.Join(dir, TestResultFile)); err == nil {
		hs.Tested = gjson.GetBytes(data, "passed").Bool()
	}
	return hs
}

// mergeScope folds one scope's installed entries into the report. An
// installed hook with no generated counterpart still gets an entry, so
// the report covers everything the host will run.
func (r *Reporter) mergeScope(report *Report, scope settings.Scope) error {
	doc, err := r.store.Load(scope)
	if err != nil {
		return err
	}

	for _, spec := range hook.Events() {
		for _, e := range doc.Entries(spec.Type) {
			name := e.Meta.HookName
			if name == "" {
				continue // entry from another tool, not ours to report on
			}
			report.Scopes[string(scope)]++
			if i, ok := report.byName[name]; ok {
				report.Hooks[i].Installed = append(report.Hooks[i].Installed, string(scope))
				continue
			}
			report.Hooks = append(report.Hooks, HookStatus{
				Name:      name,
				Event:     spec.Type,
				Installed: []string{string(scope)},
			})
			report.byName[name] = len(report.Hooks) - 1
		}
	}
	return nil
}

// nextActions derives a prioritized to-do list from the report.
// Ordering: fix broken definitions first, then install validated work,
// then test installed hooks.
func nextActions(report *Report) []string {
	var fix, install, test []string
	for _, hs := range report.Hooks {
		switch {
		case hs.Generated && !hs.Validated:
			fix = append(fix, fmt.Sprintf("fix %s: %s", hs.Name, firstProblem(hs)))
		case hs.Generated && len(hs.Installed) == 0:
			install = append(install, fmt.Sprintf("install %s (hooksmith install %s <user|project>)", hs.Name, hs.Path))
		case len(hs.Installed) > 0 && !hs.Tested:
			test = append(test, fmt.Sprintf("test %s: no passing test result recorded", hs.Name))
		}
	}

	actions := append(fix, install...)
	actions = append(actions, test...)
	if len(actions) == 0 && len(report.Hooks) > 0 {
		actions = append(actions, "all hooks generated, validated, installed, and tested")
	}
	return actions
}

func firstProblem(hs HookStatus) string {
	if len(hs.Problems) > 0 {
		return hs.Problems[0]
	}
	return "validation failed"
}
