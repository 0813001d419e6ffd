// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/hooksmith/internal/template"
)

// newTemplatesCmd creates the templates command
func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List builtin hook templates",
		Long: `List the builtin template catalog: each template's event type,
default timeout, supported languages, and parameters.

Example:
  hooksmith templates
  hooksmith templates --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := template.List()
			if err != nil {
				return reportError(err)
			}

			if jsonOut {
				return printJSON(infos)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEVENT\tTIMEOUT\tLANGUAGES\tDESCRIPTION")
			for _, info := range infos {
				langs := "-"
				if len(info.Languages) > 0 {
					langs = strings.Join(info.Languages, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%ds\t%s\t%s\n",
					info.Name, info.Event, info.Timeout, langs, truncate(info.Description, 50))
			}
			w.Flush()
			return nil
		},
	}
}
