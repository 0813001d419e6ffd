// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/hook"
	"github.com/randalmurphal/hooksmith/internal/installer"
	"github.com/randalmurphal/hooksmith/internal/settings"
)

// newInstallCmd creates the install command
func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <hook.json> <user|project>",
		Short: "Install a hook into the settings file",
		Long: `Validate a hook definition and merge it into the chosen scope's
settings file. The previous file is snapshotted into the backup
directory before the write, and the write itself is atomic: on any
failure the settings file is untouched.

Example:
  hooksmith install ./hooks/formatter-go/hook.json project
  hooksmith install ./hooks/formatter-go/hook.json user --replace`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := settings.ParseScope(args[1])
			if err != nil {
				return reportError(err)
			}

			def, err := hook.ReadDefinition(args[0])
			if err != nil {
				return reportError(err)
			}

			replace, _ := cmd.Flags().GetBool("replace")

			store := newStore()
			if err := installer.New(store).Install(scope, def, installer.Options{Replace: replace}); err != nil {
				return reportError(err)
			}

			if !quiet {
				fmt.Printf("Installed %s (%s) into %s scope: %s\n", def.Name(), def.Event, scope, store.Path(scope))
			}
			return nil
		},
	}

	cmd.Flags().Bool("replace", false, "overwrite an existing hook with the same name")

	return cmd
}
