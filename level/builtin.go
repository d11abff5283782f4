package level

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"sync"
)

//go:embed levels
var builtinFS embed.FS

var (
	builtinOnce   sync.Once
	builtinLevels []*Config
	builtinErr    error
)

func loadBuiltin() {
	entries, err := fs.ReadDir(builtinFS, "levels")
	if err != nil {
		builtinErr = err
		return
	}
	for _, e := range entries {
		format, err := FormatOf(e.Name())
		if err != nil {
			continue
		}
		data, err := builtinFS.ReadFile("levels/" + e.Name())
		if err != nil {
			builtinErr = err
			return
		}
		cfg, err := Parse(data, format)
		if err != nil {
			builtinErr = fmt.Errorf("builtin %s: %w", e.Name(), err)
			return
		}
		builtinLevels = append(builtinLevels, cfg)
	}
	slices.SortStableFunc(builtinLevels, func(a, b *Config) int {
		return modeOrder[a.Mode] - modeOrder[b.Mode]
	})
}

// Builtin returns the embedded levels in lesson order. Each call returns
// fresh copies.
func Builtin() []*Config {
	builtinOnce.Do(loadBuiltin)
	if builtinErr != nil {
		panic(fmt.Sprintf("level: broken builtin levels: %v", builtinErr))
	}
	out := make([]*Config, len(builtinLevels))
	for i, cfg := range builtinLevels {
		out[i] = cfg.clone()
	}
	return out
}

// Lookup returns the built-in level with the given id
func Lookup(id string) (*Config, error) {
	for _, cfg := range Builtin() {
		if cfg.ID == id {
			return cfg, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownLevel, id)
}

func (c *Config) clone() *Config {
	out := *c
	if c.Obstacle != nil {
		o := *c.Obstacle
		out.Obstacle = &o
	}
	if c.Goal != nil {
		g := *c.Goal
		out.Goal = &g
	}
	return &out
}
