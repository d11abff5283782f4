// Package version holds build information for the workshop CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders v with each numeric part in its own colour. Anything after
// the patch number is left plain. Colour is dropped when output is not a
// terminal, as decided by fatih/color.
func Colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := fmt.Sprintf("%s.%s.%s", majorColor.Sprint(parts[0]), minorColor.Sprint(parts[1]), patchColor.Sprint(parts[2]))
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
