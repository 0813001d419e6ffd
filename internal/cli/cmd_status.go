// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/status"
)

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show hook status across generation and both scopes",
		Long: `Cross-reference the generated-hooks output directory against the
hooks installed at both scopes, and report per-hook state: generated,
validated, installed, tested. Ends with a prioritized next-action list.

Example:
  hooksmith status
  hooksmith status --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := status.New(outputDir(), newStore()).Build(cmd.Context())
			if err != nil {
				return reportError(err)
			}

			if jsonOut {
				return printJSON(report)
			}

			if len(report.Hooks) == 0 {
				fmt.Println("No hooks generated or installed. Start with: hooksmith build --template <name>")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEVENT\tGENERATED\tVALIDATED\tINSTALLED\tTESTED")
			for _, h := range report.Hooks {
				installed := "-"
				if len(h.Installed) > 0 {
					installed = strings.Join(h.Installed, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					h.Name, h.Event, mark(h.Generated), mark(h.Validated), installed, mark(h.Tested))
			}
			w.Flush()

			fmt.Printf("\nBackups: user=%d project=%d\n", report.Backups["user"], report.Backups["project"])

			if len(report.NextActions) > 0 {
				fmt.Println("\nNext actions:")
				for _, a := range report.NextActions {
					fmt.Printf("  - %s\n", a)
				}
			}
			return nil
		},
	}
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}
