package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blockkit/internal/version"
)

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version:   version.Version,
				GitCommit: version.GitCommit,
				BuildDate: version.BuildDate,
				GoVersion: runtime.Version(),
			}
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "", "text":
				fmt.Fprintf(out, "workshop %s\n", version.Colored(info.Version))
				if info.GitCommit != "" {
					fmt.Fprintf(out, "commit: %s\n", info.GitCommit)
				}
				if info.BuildDate != "" {
					fmt.Fprintf(out, "built:  %s\n", info.BuildDate)
				}
				fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
				return nil
			default:
				return fmt.Errorf("unsupported --format %q (expected text|json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}
