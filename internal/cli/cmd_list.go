// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/installer"
	"github.com/randalmurphal/hooksmith/internal/settings"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list <user|project>",
		Aliases: []string{"ls"},
		Short:   "List installed hooks",
		Long: `List every hook entry in the chosen scope's settings file, in the
order the host runtime will run them.

Example:
  hooksmith list project
  hooksmith list user --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := settings.ParseScope(args[0])
			if err != nil {
				return reportError(err)
			}

			hooks, err := installer.New(newStore()).List(scope)
			if err != nil {
				return reportError(err)
			}

			if jsonOut {
				return printJSON(hooks)
			}

			if len(hooks) == 0 {
				fmt.Printf("No hooks installed in %s scope.\n", scope)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EVENT\tNAME\tTIMEOUT\tCOMMAND")
			fmt.Fprintln(w, "─────\t────\t───────\t───────")
			for _, h := range hooks {
				fmt.Fprintf(w, "%s\t%s\t%ds\t%s\n", h.Event, h.Name, h.Timeout, truncate(h.Command, 60))
			}
			w.Flush()
			return nil
		},
	}
}
