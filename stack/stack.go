// Package stack implements the "stack the toys" mini game: each drop adds a
// toy block to a tower, and five blocks win the round half a second after
// the last one lands. Creative play stacks forever and never wins.
package stack

import (
	"time"

	"github.com/felixgeelhaar/blockkit"
	"github.com/felixgeelhaar/blockkit/internal/sched"
)

// Game rules
const (
	WinHeight = 5                      // blocks needed to win
	Spacing   = 60                     // vertical distance between blocks
	WinDelay  = 500 * time.Millisecond // from the winning drop to the win
)

// Colors and Glyphs cycle by block index
var (
	Colors = []string{"red", "blue", "yellow", "green", "purple"}
	Glyphs = []string{"📦", "🎁", "🧸", "🎨", "🧱", "🍭"}
)

// Block is one stacked toy
type Block struct {
	Index  int    `json:"index"`
	Height int    `json:"height"` // above the base
	Color  string `json:"color"`
	Glyph  string `json:"glyph"`
}

// Snapshot is the read-only view published after every change
type Snapshot struct {
	Blocks   []Block
	Won      bool
	Pending  bool // win scheduled but not yet delivered
	Creative bool
}

// Game is a single round. Like the interpreter it owns no clock: Drop and
// Tick take the current time. Game is not safe for concurrent use.
type Game struct {
	creative  bool
	blocks    []Block
	won       bool
	pending   bool
	queue     *sched.Queue
	sound     blockkit.AudioSink
	onWin     func()
	observers []func(Snapshot)
}

// New creates an empty round. Creative rounds never win.
func New(creative bool) *Game {
	return &Game{creative: creative, queue: sched.NewQueue()}
}

// WithSound sets the audio sink
func (g *Game) WithSound(sink blockkit.AudioSink) *Game {
	g.sound = sink
	return g
}

// WithObserver adds a snapshot observer
func (g *Game) WithObserver(fn func(Snapshot)) *Game {
	if fn != nil {
		g.observers = append(g.observers, fn)
	}
	return g
}

// OnWin sets the callback invoked once when the round is won
func (g *Game) OnWin(fn func()) *Game {
	g.onWin = fn
	return g
}

// Drop stacks the next block. It is ignored once the round is won, unless
// the game is creative. The win is scheduled once, on the drop that reaches
// WinHeight, and delivered by Tick.
func (g *Game) Drop(now time.Time) bool {
	if g.won && !g.creative {
		return false
	}

	blockkit.PlaySound(g.sound, blockkit.SoundPop)

	n := len(g.blocks)
	g.blocks = append(g.blocks, Block{
		Index:  n,
		Height: n * Spacing,
		Color:  Colors[n%len(Colors)],
		Glyph:  Glyphs[n%len(Glyphs)],
	})

	if !g.creative && !g.pending && len(g.blocks) >= WinHeight {
		g.pending = true
		g.queue.Schedule(now.Add(WinDelay), func(time.Time) { g.win() })
	}

	g.publish()
	return true
}

// Tick delivers a scheduled win once it is due
func (g *Game) Tick(now time.Time) {
	g.queue.RunDue(now)
}

// NextDue reports when the pending win becomes due
func (g *Game) NextDue() (time.Time, bool) {
	return g.queue.Next()
}

// Reset clears the tower and cancels a pending win
func (g *Game) Reset() {
	g.queue.Clear()
	g.blocks = nil
	g.won = false
	g.pending = false
	g.publish()
}

// Blocks returns a copy of the stacked blocks
func (g *Game) Blocks() []Block {
	return append([]Block(nil), g.blocks...)
}

// Won reports whether the round is won
func (g *Game) Won() bool {
	return g.won
}

// Creative reports whether this is a free-play round
func (g *Game) Creative() bool {
	return g.creative
}

// Snapshot returns the current view
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Blocks:   g.Blocks(),
		Won:      g.won,
		Pending:  g.pending,
		Creative: g.creative,
	}
}

func (g *Game) win() {
	if g.won {
		return
	}
	g.won = true
	g.pending = false
	blockkit.PlaySound(g.sound, blockkit.SoundSuccess)
	g.publish()
	if g.onWin != nil {
		g.onWin()
	}
}

func (g *Game) publish() {
	if len(g.observers) == 0 {
		return
	}
	s := g.Snapshot()
	for _, fn := range g.observers {
		fn(s)
	}
}
