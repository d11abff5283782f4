package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/blockkit"
	"github.com/felixgeelhaar/blockkit/level"
	"github.com/felixgeelhaar/blockkit/replay"
)

// ErrNotWon is returned by run --all when a level that can be won was not
var ErrNotWon = errors.New("level not won")

type runOptions struct {
	realtime bool
	maxTime  time.Duration
	record   string
	all      bool
	quiet    bool
}

// outcome is the result of one headless run
type outcome struct {
	Level   string
	State   blockkit.RunState
	Actor   blockkit.Actor
	Elapsed time.Duration
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run [LEVEL|FILE]",
		Short: "Run a level's program without a terminal UI",
		Long: `Run executes a level's block program headless and prints a trace of every
block as it runs. LEVEL is a built-in level ID; FILE is a .yaml or .toml level.

By default the run uses a virtual clock and finishes immediately. --realtime
paces the run with the wall clock instead.`,
		Example: `  workshop run loop-square
  workshop run ./my-level.yaml --realtime
  workshop run goal-seeker --record goal.replay
  workshop run --all`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				return runAll(cmd.Context(), cmd.OutOrStdout(), opts.maxTime)
			}
			cfg, err := resolveLevel(args[0])
			if err != nil {
				return err
			}
			res, err := runLevel(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s after %s\n", res.Level, res.State, res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "pace the run with the wall clock")
	cmd.Flags().DurationVar(&opts.maxTime, "max-time", 30*time.Second, "stop a run that is still going after this long")
	cmd.Flags().StringVar(&opts.record, "record", "", "record every snapshot to FILE for later replay")
	cmd.Flags().BoolVar(&opts.all, "all", false, "run every built-in level and report the outcomes")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the block trace")

	return cmd
}

func runLevel(ctx context.Context, out io.Writer, cfg *level.Config, opts runOptions) (_ outcome, err error) {
	interp, err := cfg.Interpreter()
	if err != nil {
		return outcome{}, err
	}
	if !opts.quiet {
		interp.WithObserver(newTracer(out, interp.Program()).Observe)
	}

	if opts.record != "" {
		f, cerr := os.Create(opts.record)
		if cerr != nil {
			return outcome{}, fmt.Errorf("create replay: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close replay: %w", cerr)
			}
		}()
		rec, rerr := replay.NewRecorder(f, replay.Header{
			Program:  interp.Program().ID,
			Level:    cfg.ID,
			Recorded: time.Now().UTC(),
		})
		if rerr != nil {
			return outcome{}, rerr
		}
		interp.WithObserver(rec.Observe)
		defer func() {
			if rerr := rec.Err(); rerr != nil && err == nil {
				err = rerr
			}
			slog.Info("replay recorded", "file", opts.record, "frames", rec.Frames())
		}()
	}

	slog.Info("run started", "level", cfg.ID, "realtime", opts.realtime)
	var elapsed time.Duration
	if opts.realtime {
		elapsed = runRealtime(ctx, interp, opts.maxTime)
	} else {
		start := time.Unix(0, 0)
		interp.Run()
		elapsed = blockkit.Simulate(interp, start, opts.maxTime).Sub(start)
		if interp.State() == blockkit.Running {
			interp.Stop()
		}
	}

	res := outcome{Level: cfg.ID, State: interp.State(), Actor: interp.Actor(), Elapsed: elapsed}
	slog.Info("run finished", "level", cfg.ID, "state", res.State, "elapsed", elapsed)
	return res, nil
}

// runRealtime drives interp with a Driver until the run ends, ctx is done or
// maxTime passes, whichever comes first.
func runRealtime(ctx context.Context, interp *blockkit.Interpreter, maxTime time.Duration) time.Duration {
	done := make(chan struct{})
	var started, closed bool
	interp.WithObserver(func(s blockkit.Snapshot) {
		switch {
		case s.State == blockkit.Running:
			started = true
		case started && !closed:
			closed = true
			close(done)
		}
	})

	d := blockkit.NewDriver(interp)
	defer d.Close()

	begin := time.Now()
	d.Run()

	timer := time.NewTimer(maxTime)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		slog.Warn("run exceeded max time, stopping", "max", maxTime)
		d.Stop()
	case <-ctx.Done():
		d.Stop()
	}
	return time.Since(begin)
}

// runAll runs every built-in level concurrently on a virtual clock and
// prints a table of outcomes in lesson order.
func runAll(ctx context.Context, out io.Writer, maxTime time.Duration) error {
	levels := level.Builtin()
	results := make([]outcome, len(levels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cfg := range levels {
		g.Go(func() error {
			res, err := runLevel(ctx, io.Discard, cfg, runOptions{maxTime: maxTime, quiet: true})
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed []string
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tSTATE\tSCORE\tTIME")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", res.Level, res.State, res.Actor.Score, res.Elapsed.Round(time.Millisecond))
		if levels[i].WinCondition() != "" && res.State != blockkit.Won {
			failed = append(failed, res.Level)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrNotWon, strings.Join(failed, ", "))
	}
	return nil
}
