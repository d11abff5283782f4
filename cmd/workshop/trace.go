package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/felixgeelhaar/blockkit"
)

var (
	idColor     = color.New(color.FgCyan)
	speechColor = color.New(color.FgYellow)
	wonColor    = color.New(color.FgGreen, color.Bold)
	stateColor  = color.New(color.FgMagenta)
)

// tracer prints one line per executed block and per state change
type tracer struct {
	mu      sync.Mutex
	out     io.Writer
	program *blockkit.Program
	last    blockkit.Snapshot
	started bool
}

func newTracer(out io.Writer, program *blockkit.Program) *tracer {
	return &tracer{out: out, program: program}
}

func (t *tracer) Observe(s blockkit.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.last
	t.last = s
	if !t.started {
		t.started = true
		prev = blockkit.Snapshot{State: -1}
	}

	switch {
	case s.State != prev.State:
		line := stateColor.Sprint(s.State.String())
		if s.State == blockkit.Won {
			line = wonColor.Sprint("won") + fmt.Sprintf(" score=%d", s.Actor.Score)
		}
		fmt.Fprintf(t.out, "%-8s %s\n", "", line)
	case s.Current != "" && (s.Current != prev.Current || s.Actor != prev.Actor):
		fmt.Fprintf(t.out, "%-8s %s\n", idColor.Sprint(s.Current), t.describe(s))
	}
}

func (t *tracer) describe(s blockkit.Snapshot) string {
	text := string(s.Current)
	if ins := t.program.Find(s.Current); ins != nil {
		text = blockkit.FormatInstruction(ins)
	}
	line := fmt.Sprintf("%-22s pos=(%.0f,%.0f) heading=%d", text, s.Actor.Position.X, s.Actor.Position.Y, s.Actor.Heading)
	switch {
	case s.Loop == nil:
	case s.Loop.Of == 0:
		line += fmt.Sprintf(" pass=%d", s.Loop.Pass)
	default:
		line += fmt.Sprintf(" pass=%d/%d", s.Loop.Pass, s.Loop.Of)
	}
	if s.Actor.Speech != "" {
		line += " " + speechColor.Sprintf("%q", s.Actor.Speech)
	}
	return line
}
