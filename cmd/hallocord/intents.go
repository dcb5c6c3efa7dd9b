package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/hallocord/internal/errors"
	"github.com/vango-dev/hallocord/pkg/intents"
)

func intentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intents [NAME...]",
		Short: "List gateway intents or compute a bitmask",
		Long: `With no arguments, list every known intent and its bit value.
With arguments, print the bitmask for the given names.

Examples:
  hallocord intents
  hallocord intents GUILDS GUILD_MESSAGES
  hallocord intents unprivileged`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				mask, err := intents.Parse(args...)
				if err != nil {
					return errors.New("H020").Wrap(err)
				}
				fmt.Fprintf(out, "%d\n", uint64(mask))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, name := range intents.All.Names() {
				bit, _ := intents.Parse(name)
				marker := ""
				if intents.Privileged.Has(bit) {
					marker = "privileged"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, uint64(bit), marker)
			}
			return w.Flush()
		},
	}
	return cmd
}
