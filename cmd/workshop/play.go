package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blockkit/internal/tui"
)

// ErrNotTerminal is returned by play when stdout is not a terminal
var ErrNotTerminal = errors.New("play needs an interactive terminal; use run for headless output")

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play LEVEL|FILE",
		Short: "Play a level in the terminal",
		Long: `Play opens the level stage in the terminal. Press r to run the program, s to
stop it, tab to select a block and space to cycle its parameter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			cfg, err := resolveLevel(args[0])
			if err != nil {
				return err
			}
			return tui.Run(cfg)
		},
	}
}
