// Package level describes workshop levels: the stage, the start actor, the
// win condition and the starter program. Levels are read from YAML or TOML
// files; a set of built-in levels ships embedded in the package.
package level

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/blockkit"
	"github.com/felixgeelhaar/blockkit/internal/ir"
)

// Mode is the lesson a level teaches
type Mode string

// Level modes, in lesson order
const (
	ModeLoop       Mode = "LOOP"
	ModeCondition  Mode = "CONDITION"
	ModeLogic      Mode = "LOGIC"
	ModeFinal      Mode = "FINAL"
	ModePlayground Mode = "PLAYGROUND"
)

var modeOrder = map[Mode]int{
	ModeLoop:       0,
	ModeCondition:  1,
	ModeLogic:      2,
	ModeFinal:      3,
	ModePlayground: 4,
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	_, ok := modeOrder[m]
	return ok
}

// Creative reports whether the mode is free play, which never wins
func (m Mode) Creative() bool {
	return m == ModePlayground
}

// ErrInvalidLevel is wrapped by every configuration error
var ErrInvalidLevel = errors.New("invalid level")

// ErrUnknownLevel is returned by Lookup for an unknown id
var ErrUnknownLevel = errors.New("unknown level")

// Theme is the presentation of a level
type Theme struct {
	Name     string `yaml:"name" toml:"name"`
	Sprite   string `yaml:"sprite" toml:"sprite"`
	Goal     string `yaml:"goal" toml:"goal"`
	Obstacle string `yaml:"obstacle" toml:"obstacle"`
	Color    string `yaml:"color" toml:"color"`
}

// Stage is the stage geometry. Zero fields take the blockkit defaults.
type Stage struct {
	HalfExtent float64 `yaml:"half_extent" toml:"half_extent"`
	Margin     float64 `yaml:"margin" toml:"margin"`
	Tolerance  float64 `yaml:"tolerance" toml:"tolerance"`
}

// Start is the actor every run starts from
type Start struct {
	X       float64 `yaml:"x" toml:"x"`
	Y       float64 `yaml:"y" toml:"y"`
	Heading int     `yaml:"heading" toml:"heading"`
	Lives   int     `yaml:"lives" toml:"lives"`
}

// Timing overrides the cooperative pauses, in milliseconds.
// Zero fields keep the interpreter defaults.
type Timing struct {
	StepMS int `yaml:"step_ms" toml:"step_ms"`
	SayMS  int `yaml:"say_ms" toml:"say_ms"`
	LoopMS int `yaml:"loop_ms" toml:"loop_ms"`
}

// Config is one level
type Config struct {
	ID       string        `yaml:"id" toml:"id"`
	Title    string        `yaml:"title" toml:"title"`
	Mode     Mode          `yaml:"mode" toml:"mode"`
	Theme    Theme         `yaml:"theme" toml:"theme"`
	Stage    Stage         `yaml:"stage" toml:"stage"`
	Obstacle *blockkit.Vec `yaml:"obstacle,omitempty" toml:"obstacle,omitempty"`
	Goal     *blockkit.Vec `yaml:"goal,omitempty" toml:"goal,omitempty"`
	Start    Start         `yaml:"start" toml:"start"`
	Win      string        `yaml:"win" toml:"win"` // empty means at_goal, except in PLAYGROUND
	Timing   Timing        `yaml:"timing" toml:"timing"`
	Program  string        `yaml:"program" toml:"program"` // block script
}

func (c *Config) applyDefaults() {
	if c.Stage.HalfExtent == 0 {
		c.Stage.HalfExtent = blockkit.DefaultHalfExtent
	}
	if c.Stage.Margin == 0 {
		c.Stage.Margin = blockkit.DefaultMargin
	}
	if c.Stage.Tolerance == 0 {
		c.Stage.Tolerance = blockkit.DefaultTolerance
	}
	if c.Title == "" {
		c.Title = c.ID
	}
}

// Validate checks the configuration, including the program script
func (c *Config) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidLevel)
	case !c.Mode.Valid():
		return fmt.Errorf("%w %s: unknown mode %q", ErrInvalidLevel, c.ID, c.Mode)
	case c.Stage.Margin < 0 || c.Stage.Margin >= c.Stage.HalfExtent:
		return fmt.Errorf("%w %s: margin %v must be within half extent %v", ErrInvalidLevel, c.ID, c.Stage.Margin, c.Stage.HalfExtent)
	case c.Stage.Tolerance < 0:
		return fmt.Errorf("%w %s: negative tolerance", ErrInvalidLevel, c.ID)
	case c.Timing.StepMS < 0 || c.Timing.SayMS < 0 || c.Timing.LoopMS < 0:
		return fmt.Errorf("%w %s: negative timing", ErrInvalidLevel, c.ID)
	}

	if _, err := c.Build(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidLevel, c.ID, err)
	}
	return nil
}

// Build parses the level's program script
func (c *Config) Build() (*ir.Program, error) {
	return blockkit.ParseProgram(c.ID, c.Program)
}

// World returns the stage geometry with the level's obstacle and goal
func (c *Config) World() blockkit.World {
	w := blockkit.World{
		HalfExtent: c.Stage.HalfExtent,
		Margin:     c.Stage.Margin,
		Tolerance:  c.Stage.Tolerance,
	}
	if c.Obstacle != nil {
		o := *c.Obstacle
		w.Obstacle = &o
	}
	if c.Goal != nil {
		g := *c.Goal
		w.Goal = &g
	}
	return w
}

// StartActor returns the actor every run starts from
func (c *Config) StartActor() blockkit.Actor {
	return blockkit.Actor{
		Position: blockkit.Vec{X: c.Start.X, Y: c.Start.Y},
		Heading:  c.Start.Heading,
		Lives:    c.Start.Lives,
	}
}

// WinCondition returns the predicate that wins the level
func (c *Config) WinCondition() blockkit.Predicate {
	if c.Mode.Creative() {
		return ""
	}
	if c.Win == "" {
		return blockkit.AtGoal
	}
	return blockkit.Predicate(c.Win)
}

// InterpreterTiming converts the millisecond overrides
func (c *Config) InterpreterTiming() blockkit.Timing {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return blockkit.Timing{
		Step: ms(c.Timing.StepMS),
		Say:  ms(c.Timing.SayMS),
		Loop: ms(c.Timing.LoopMS),
	}
}

// Interpreter builds an idle interpreter configured for this level
func (c *Config) Interpreter() (*blockkit.Interpreter, error) {
	program, err := c.Build()
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", c.ID, err)
	}
	return blockkit.NewInterpreter(program, c.World()).
		WithStart(c.StartActor()).
		WithWinCondition(c.WinCondition()).
		WithTiming(c.InterpreterTiming()), nil
}
