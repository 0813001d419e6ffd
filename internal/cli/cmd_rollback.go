// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/settings"
)

// newRollbackCmd creates the rollback command
func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <user|project>",
		Short: "Restore the most recent settings backup",
		Long: `Restore the chosen scope's settings file from its most recent
backup. The backup file itself is kept, so rollback can be inspected
and repeated after further writes.

Example:
  hooksmith rollback project`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := settings.ParseScope(args[0])
			if err != nil {
				return reportError(err)
			}

			store := newStore()
			backups, err := store.Backups(scope)
			if err != nil {
				return reportError(err)
			}

			if err := store.Rollback(scope); err != nil {
				return reportError(err)
			}

			if !quiet {
				fmt.Printf("Restored %s from %s\n", store.Path(scope), backups[0].Path)
			}
			return nil
		},
	}
}
