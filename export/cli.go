package export

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// ProgramExporter is implemented by types that can export to blocks JSON.
// BlocksExporter implements this interface.
type ProgramExporter interface {
	Export() (*BlocksProgram, error)
}

// ExportOptions configures the export behavior.
type ExportOptions struct {
	// PrettyPrint enables indented JSON output
	PrettyPrint bool

	// Indent is the string used for indentation (default: "  ")
	Indent string

	// Output is where JSON will be written (default: os.Stdout)
	Output io.Writer

	// IDs filters to specific program IDs (empty = export all).
	// A single ID exports that program on its own rather than keyed by ID.
	IDs []string
}

// DefaultExportOptions returns options with sensible defaults.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		PrettyPrint: false,
		Indent:      "  ",
		Output:      os.Stdout,
	}
}

// ExportProgram exports a single program to JSON.
func ExportProgram(exporter ProgramExporter, opts ExportOptions) error {
	program, err := exporter.Export()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	return writeJSON(program, opts)
}

// ExportAll exports multiple programs to JSON.
// The output is a JSON object with program IDs as keys.
func ExportAll(programs map[string]ProgramExporter, opts ExportOptions) error {
	// Filter to a specific program if requested
	if len(opts.IDs) == 1 {
		exporter, ok := programs[opts.IDs[0]]
		if !ok {
			return fmt.Errorf("program %q not found", opts.IDs[0])
		}
		return ExportProgram(exporter, opts)
	}

	ids := opts.IDs
	if len(ids) == 0 {
		ids = slices.Sorted(maps.Keys(programs))
	}

	result := make(map[string]*BlocksProgram, len(ids))
	for _, id := range ids {
		exporter, ok := programs[id]
		if !ok {
			return fmt.Errorf("program %q not found", id)
		}
		program, err := exporter.Export()
		if err != nil {
			return fmt.Errorf("export %q failed: %w", id, err)
		}
		result[id] = program
	}

	return writeJSON(result, opts)
}

// writeJSON writes a value as JSON to the configured output.
func writeJSON(v any, opts ExportOptions) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var data []byte
	var err error

	if opts.PrettyPrint {
		indent := opts.Indent
		if indent == "" {
			indent = "  "
		}
		data, err = json.MarshalIndent(v, "", indent)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("JSON marshal failed: %w", err)
	}

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	// Add trailing newline for terminal output
	if _, err := out.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write newline failed: %w", err)
	}

	return nil
}

// NewCommand returns an export command over the given programs.
// Usage: export [ID...] [--pretty] [--indent STR] [-o FILE] [--list]
func NewCommand(programs map[string]ProgramExporter) *cobra.Command {
	var (
		pretty bool
		indent string
		output string
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "export [ID...]",
		Short: "Export programs as blocks JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// List mode
			if list {
				fmt.Fprintln(cmd.OutOrStdout(), "Available programs:")
				for _, id := range slices.Sorted(maps.Keys(programs)) {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", id)
				}
				return nil
			}

			opts := ExportOptions{
				PrettyPrint: pretty,
				Indent:      indent,
				IDs:         args,
				Output:      cmd.OutOrStdout(),
			}

			// Handle output file
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				opts.Output = f
			}

			return ExportAll(programs, opts)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON output")
	cmd.Flags().StringVar(&indent, "indent", "  ", "indentation string (used with --pretty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&list, "list", false, "list available program IDs")

	return cmd
}
