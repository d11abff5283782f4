package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/blockkit/level"
)

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the built-in levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := cases.Title(language.English)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLESSON\tTITLE\tWIN")
			for _, cfg := range level.Builtin() {
				win := string(cfg.WinCondition())
				if win == "" {
					win = "-"
				}
				lesson := title.String(strings.ToLower(string(cfg.Mode)))
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.ID, lesson, cfg.Title, win)
			}
			return w.Flush()
		},
	}
}
