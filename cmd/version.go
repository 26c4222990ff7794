package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildInfo returns the version, commit and build date. Values set by linker
// flags win; otherwise the module and VCS stamps of a `go install` build are used.
func buildInfo() (string, string, string) {
	v, c, d := version, commit, date
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, c, d
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && c == "none":
			c = s.Value
		case s.Key == "vcs.time" && d == "unknown":
			d = s.Value
		}
	}
	return v, c, d
}

// versionCmd prints build details for bug reports.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hotreport.",
	Run: func(cmd *cobra.Command, _ []string) {
		v, c, d := buildInfo()
		cmd.Printf("hotreport %s\n", v)
		cmd.Printf("  Commit:  %s\n", c)
		cmd.Printf("  Built:   %s\n", d)
		cmd.Printf("  Runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
