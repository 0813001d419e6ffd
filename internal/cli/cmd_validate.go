// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/hook"
	"github.com/randalmurphal/hooksmith/internal/safety"
)

// newValidateCmd creates the validate command
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <hook.json>",
		Short: "Run the safety policy against a hook definition",
		Long: `Run every safety check against a hook definition file and report
each failing rule. Exit 0 when the definition is installable, non-zero
otherwise.

Example:
  hooksmith validate ./hooks/formatter-go/hook.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := hook.ReadDefinition(args[0])
			if err != nil {
				return reportError(err)
			}

			result := safety.Validate(def)

			if jsonOut {
				if err := printJSON(result); err != nil {
					return err
				}
				if !result.OK {
					return fmt.Errorf("%d validation failure(s)", len(result.Failures))
				}
				return nil
			}

			if result.OK {
				if !quiet {
					fmt.Printf("%s: valid (%s)\n", def.Name(), def.Event)
				}
				return nil
			}

			fmt.Printf("%s: %d failure(s)\n", def.Name(), len(result.Failures))
			for _, f := range result.Failures {
				fmt.Printf("  [%s] %s\n", f.Rule, f.Message)
			}
			return fmt.Errorf("%d validation failure(s)", len(result.Failures))
		},
	}
}
