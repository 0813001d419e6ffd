// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/installer"
	"github.com/randalmurphal/hooksmith/internal/settings"
)

// newUninstallCmd creates the uninstall command
func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <hook-name> <user|project>",
		Short: "Remove an installed hook from the settings file",
		Long: `Remove the named hook from the chosen scope's settings file. Only
the named entry is removed; hooks written by other tools and all other
settings keys survive untouched. The previous file is backed up first.

Example:
  hooksmith uninstall formatter-go project`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := settings.ParseScope(args[1])
			if err != nil {
				return reportError(err)
			}

			store := newStore()
			if err := installer.New(store).Uninstall(scope, args[0]); err != nil {
				return reportError(err)
			}

			if !quiet {
				fmt.Printf("Uninstalled %s from %s scope\n", args[0], scope)
			}
			return nil
		},
	}
}
