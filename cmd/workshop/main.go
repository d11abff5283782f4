package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/felixgeelhaar/blockkit/internal/version"
)

// main builds the command tree and executes it. Any command error exits
// with status 1; cobra has already printed it.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		colorMode string
	)

	root := &cobra.Command{
		Use:          "workshop",
		Short:        "Run and play block-programming workshop levels",
		Long:         `workshop runs the block programs of the logic workshop levels headless, in the terminal, or exports them for visual editors.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyColorMode(colorMode); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&colorMode, "color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(newLevelsCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newPlayCmd())
	root.AddCommand(newStackCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q (expected debug|info|warn|error)", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func applyColorMode(mode string) error {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "auto":
		// fatih/color already disables itself off-terminal
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
