// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/hook"
	"github.com/randalmurphal/hooksmith/internal/template"
	"github.com/randalmurphal/hooksmith/internal/util"
)

// newBuildCmd creates the build command
func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate a hook from a builtin template",
		Long: `Generate a hook definition from a builtin template and write it to
the output directory as <dir>/<hook-name>/hook.json with a companion
README.md. The definition is validated before anything is written; an
instantiation that fails the safety policy produces no files.

Example:
  hooksmith build --template formatter --language go
  hooksmith build --template session-context --param count=5 --output ./out
  hooksmith build --template formatter --language python --param name=fmt-py`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tplName, _ := cmd.Flags().GetString("template")
			language, _ := cmd.Flags().GetString("language")
			rawParams, _ := cmd.Flags().GetStringArray("param")
			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				out = outputDir()
			}

			params, err := parseParams(rawParams)
			if err != nil {
				return reportError(err)
			}

			def, err := template.Render(tplName, language, params)
			if err != nil {
				return reportError(err)
			}

			dir := filepath.Join(out, def.Name())
			data, err := hook.EncodeDefinition(def)
			if err != nil {
				return reportError(err)
			}
			if err := util.WriteFileAtomic(filepath.Join(dir, "hook.json"), data, 0644); err != nil {
				return reportError(err)
			}

			tpl, err := template.Get(tplName)
			if err != nil {
				return reportError(err)
			}
			if err := util.WriteFileAtomic(filepath.Join(dir, "README.md"), template.Readme(tpl, def), 0644); err != nil {
				return reportError(err)
			}

			if jsonOut {
				return printJSON(map[string]string{
					"name":  def.Name(),
					"event": string(def.Event),
					"path":  filepath.Join(dir, "hook.json"),
				})
			}
			if !quiet {
				fmt.Printf("Generated %s (%s) -> %s\n", def.Name(), def.Event, dir)
				if interactive() {
					fmt.Printf("Install with: hooksmith install %s <user|project>\n", filepath.Join(dir, "hook.json"))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("template", "t", "", "template name (see 'hooksmith templates')")
	cmd.Flags().StringP("language", "l", "", "language binding for language-aware templates")
	cmd.Flags().StringArrayP("param", "p", nil, "template parameter as key=value (repeatable)")
	cmd.Flags().StringP("output", "o", "", "output directory (default from config, 'hooks')")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

// parseParams converts repeated key=value flags into a map.
func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", kv)
		}
		params[key] = value
	}
	return params, nil
}
