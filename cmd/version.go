package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the PeerPath version",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), version, readBuildInfo())
	},
}

func readBuildInfo() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

// printVersion falls back to the module version recorded by `go install`
// when no version was stamped at link time.
func printVersion(w io.Writer, stamped string, info *debug.BuildInfo) {
	v := stamped
	if v == "(devel)" && info != nil && info.Main.Version != "" {
		v = info.Main.Version
	}
	fmt.Fprintf(w, "peerpath %s (%s, %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
