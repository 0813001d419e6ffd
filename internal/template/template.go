// Package template provides the builtin hook template catalog and the
// rendering engine that turns (template, language, parameters) into a
// validated hook definition.
//
// Substitution is plain text interpolation into fixed placeholder
// positions. Parameter values are screened for shell metacharacters, so
// a rendered command can never contain shell structure that was not in
// the template itself. Every rendered definition is passed through the
// safety validator before it is returned; callers never receive an
// invalid definition from this package.
package template

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	hserrors "github.com/randalmurphal/hooksmith/internal/errors"
	"github.com/randalmurphal/hooksmith/internal/hook"
	"github.com/randalmurphal/hooksmith/internal/safety"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// GeneratedBy is the provenance stamp written into hook metadata.
const GeneratedBy = "hooksmith"

// Language binds language-specific values into a template: variable
// values substituted into the command, and an optional path filter
// override for the matcher.
type Language struct {
	Vars  map[string]string `yaml:"vars,omitempty"`
	Paths []string          `yaml:"paths,omitempty"`
}

// Template is one entry of the builtin catalog, pre-bound to a single
// event type.
type Template struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Event       hook.EventType      `yaml:"event"`
	Timeout     int                 `yaml:"timeout"`
	Command     string              `yaml:"command"`
	Matcher     hook.Matcher        `yaml:"matcher,omitempty"`
	Vars        map[string]string   `yaml:"vars,omitempty"`
	Languages   map[string]Language `yaml:"languages,omitempty"`
}

// LanguageNames returns the languages a template supports, sorted.
func (t *Template) LanguageNames() []string {
	names := make([]string, 0, len(t.Languages))
	for name := range t.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info contains summary information about a template.
type Info struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Event       hook.EventType `json:"event"`
	Timeout     int            `json:"timeout"`
	Languages   []string       `json:"languages,omitempty"`
	Parameters  []string       `json:"parameters,omitempty"`
}

var (
	loadOnce sync.Once
	loadErr  error
	registry map[string]*Template
)

// loadCatalog parses the embedded template files exactly once.
func loadCatalog() error {
	loadOnce.Do(func() {
		registry = make(map[string]*Template)
		entries, err := builtinFS.ReadDir("builtin")
		if err != nil {
			loadErr = fmt.Errorf("read builtin templates: %w", err)
			return
		}
		for _, entry := range entries {
			data, err := builtinFS.ReadFile("builtin/" + entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("read template %s: %w", entry.Name(), err)
				return
			}
			var t Template
			if err := yaml.Unmarshal(data, &t); err != nil {
				loadErr = fmt.Errorf("parse template %s: %w", entry.Name(), err)
				return
			}
			registry[t.Name] = &t
		}
	})
	return loadErr
}

// List returns summaries of every builtin template, sorted by name.
// This is a pure read of the static catalog.
func List() ([]Info, error) {
	if err := loadCatalog(); err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(registry))
	for _, t := range registry {
		infos = append(infos, Info{
			Name:        t.Name,
			Description: t.Description,
			Event:       t.Event,
			Timeout:     t.Timeout,
			Languages:   t.LanguageNames(),
			Parameters:  placeholderNames(t.Command),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Get returns one template by name.
func Get(name string) (*Template, error) {
	if err := loadCatalog(); err != nil {
		return nil, err
	}
	t, ok := registry[name]
	if !ok {
		return nil, hserrors.ErrTemplateNotFound(name)
	}
	return t, nil
}

// placeholderPattern matches {{name}} substitution positions.
var placeholderPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// paramValuePattern is the closed set of characters a user-supplied
// parameter value may contain. Quotes, pipes, grouping, separators,
// expansions and escapes are all excluded so substitution cannot build
// new shell control structures. Template and language defaults from
// the embedded catalog are not screened; they may carry regex syntax
// and are validated as whole commands by the catalog tests.
var paramValuePattern = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,.\-/ ]*$`)

// placeholderNames extracts the distinct placeholder names of a command
// template, in first-appearance order.
func placeholderNames(command string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(command, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render instantiates a template for a language with user parameters
// and returns a hook definition that has passed safety validation.
//
// Precedence for placeholder values: user parameters override language
// bindings, which override template defaults. The reserved parameter
// "name" overrides the generated hook name instead of substituting.
func Render(templateName, language string, params map[string]string) (*hook.Definition, error) {
	t, err := Get(templateName)
	if err != nil {
		return nil, err
	}

	if language != "" && len(t.Languages) == 0 {
		return nil, hserrors.ErrUnsupportedLanguage(templateName, language, nil)
	}

	var binding Language
	if len(t.Languages) > 0 {
		if language == "" {
			return nil, hserrors.ErrUnsupportedLanguage(templateName, "(none)", t.LanguageNames())
		}
		b, ok := t.Languages[language]
		if !ok {
			return nil, hserrors.ErrUnsupportedLanguage(templateName, language, t.LanguageNames())
		}
		binding = b
	}

	known := map[string]bool{}
	for _, name := range placeholderNames(t.Command) {
		known[name] = true
	}

	vars := map[string]string{}
	for k, v := range t.Vars {
		vars[k] = v
	}
	for k, v := range binding.Vars {
		vars[k] = v
	}

	hookName := t.Name
	if language != "" {
		hookName = t.Name + "-" + language
	}
	for k, v := range params {
		if k == "name" {
			hookName = v
			continue
		}
		if !known[k] {
			return nil, hserrors.ErrUnknownParameter(templateName, k)
		}
		if !paramValuePattern.MatchString(v) {
			return nil, hserrors.ErrBadParameter(k, v)
		}
		vars[k] = v
	}

	var missing string
	command := placeholderPattern.ReplaceAllStringFunc(t.Command, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		v, ok := vars[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return m
		}
		return v
	})
	if missing != "" {
		return nil, hserrors.ErrMissingParameter(templateName, missing)
	}

	matcher := t.Matcher
	if len(binding.Paths) > 0 {
		matcher.Paths = binding.Paths
	}

	def := &hook.Definition{
		Event:   t.Event,
		Matcher: matcher,
		Actions: []hook.Action{{
			Type:    hook.ActionTypeCommand,
			Command: command,
			Timeout: t.Timeout,
		}},
		Meta: hook.Metadata{
			GeneratedBy:  GeneratedBy,
			EventType:    t.Event,
			HookName:     hookName,
			GenerationID: uuid.NewString(),
			CreatedAt:    time.Now().UTC(),
		},
	}

	if res := safety.Validate(def); !res.OK {
		msgs := make([]string, len(res.Failures))
		for i, f := range res.Failures {
			msgs[i] = fmt.Sprintf("%s: %s", f.Rule, f.Message)
		}
		ve := hserrors.ErrValidationFailed(hookName, len(res.Failures))
		ve.Why = strings.Join(msgs, "; ")
		return nil, ve
	}

	return def, nil
}

// Readme renders the human-readable companion document written next to
// a generated hook.json.
func Readme(t *Template, d *hook.Definition) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Name())
	fmt.Fprintf(&b, "%s\n\n", t.Description)
	fmt.Fprintf(&b, "- **Event**: %s\n", d.Event)
	fmt.Fprintf(&b, "- **Timeout**: %ds\n", d.Actions[0].Timeout)
	if !d.Matcher.IsEmpty() {
		if len(d.Matcher.Tools) > 0 {
			fmt.Fprintf(&b, "- **Tools**: %s\n", strings.Join(d.Matcher.Tools, ", "))
		}
		if len(d.Matcher.Paths) > 0 {
			fmt.Fprintf(&b, "- **Paths**: %s\n", strings.Join(d.Matcher.Paths, ", "))
		}
	}
	fmt.Fprintf(&b, "\n## Command\n\n```sh\n%s\n```\n", d.Actions[0].Command)
	b.WriteString("\n## Install\n\n```sh\nhooksmith install hook.json user     # all projects\nhooksmith install hook.json project  # this repository\n```\n")
	return []byte(b.String())
}
