package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blockkit/replay"
)

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay FILE",
		Short: "Print a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			header, frames, err := replay.Read(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "program %s", header.Program)
			if header.Level != "" {
				fmt.Fprintf(out, " (level %s)", header.Level)
			}
			fmt.Fprintf(out, ", recorded %s, %d frames\n", header.Recorded.Format(time.RFC3339), len(frames))

			for _, s := range frames {
				fmt.Fprintf(out, "%5d  %-8s %-8s pos=(%.0f,%.0f) heading=%d score=%d",
					s.Seq, s.State, s.Current, s.Actor.Position.X, s.Actor.Position.Y, s.Actor.Heading, s.Actor.Score)
				if s.Actor.Speech != "" {
					fmt.Fprintf(out, " %q", s.Actor.Speech)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
