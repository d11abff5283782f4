package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blockkit/stack"
)

// dropInterval separates simulated drops
const dropInterval = 300 * time.Millisecond

var blockColors = map[string]*color.Color{
	"red":    color.New(color.FgRed),
	"blue":   color.New(color.FgBlue),
	"yellow": color.New(color.FgYellow),
	"green":  color.New(color.FgGreen),
	"purple": color.New(color.FgMagenta),
}

func newStackCmd() *cobra.Command {
	var (
		drops    int
		creative bool
	)

	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Simulate the block stacking game",
		Long: `Stack drops blocks onto the tower on a virtual clock and draws the result.
The tower wins shortly after it is five blocks high. Creative mode accepts
blocks without end and never wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if drops < 0 {
				return fmt.Errorf("--drops must not be negative, got %d", drops)
			}
			g := playStack(drops, creative)
			drawTower(cmd.OutOrStdout(), g.Snapshot())
			return nil
		},
	}

	cmd.Flags().IntVarP(&drops, "drops", "n", stack.WinHeight, "number of blocks to drop")
	cmd.Flags().BoolVar(&creative, "creative", false, "free play: no win, no block limit")

	return cmd
}

// playStack drops n blocks dropInterval apart and lets any pending win land
func playStack(n int, creative bool) *stack.Game {
	g := stack.New(creative)
	now := time.Unix(0, 0)
	for range n {
		g.Drop(now)
		now = now.Add(dropInterval)
		g.Tick(now)
	}
	if due, ok := g.NextDue(); ok {
		g.Tick(due)
	}
	return g
}

func drawTower(w io.Writer, s stack.Snapshot) {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		b := s.Blocks[i]
		bar := strings.Repeat("█", 6)
		if c, ok := blockColors[b.Color]; ok {
			bar = c.Sprint(bar)
		}
		fmt.Fprintf(w, "%4d  %s %s\n", b.Height, bar, b.Glyph)
	}
	fmt.Fprintln(w, "      ‾‾‾‾‾‾")

	status := fmt.Sprintf("%d blocks", len(s.Blocks))
	if s.Won {
		status += ", " + wonColor.Sprint("tower complete")
	}
	fmt.Fprintln(w, status)
}
