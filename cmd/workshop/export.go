package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blockkit/export"
	"github.com/felixgeelhaar/blockkit/level"
)

// newExportCmd exposes the built-in level programs to the export command
func newExportCmd() *cobra.Command {
	programs := make(map[string]export.ProgramExporter)
	for _, cfg := range level.Builtin() {
		program, err := cfg.Build()
		if err != nil {
			continue
		}
		programs[cfg.ID] = export.NewBlocksExporter(program).WithTitle(cfg.Title)
	}
	return export.NewCommand(programs)
}
