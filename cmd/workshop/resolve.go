package main

import (
	"log/slog"
	"os"

	"github.com/felixgeelhaar/blockkit/level"
)

// resolveLevel loads arg as a level file when it names one, and looks it up
// among the built-in levels otherwise
func resolveLevel(arg string) (*level.Config, error) {
	if _, err := level.FormatOf(arg); err == nil {
		if _, statErr := os.Stat(arg); statErr == nil {
			cfg, err := level.Load(arg)
			if err != nil {
				return nil, err
			}
			slog.Debug("level loaded", "file", arg, "id", cfg.ID, "mode", cfg.Mode)
			return cfg, nil
		}
	}
	cfg, err := level.Lookup(arg)
	if err != nil {
		return nil, err
	}
	slog.Debug("builtin level", "id", cfg.ID, "mode", cfg.Mode)
	return cfg, nil
}
