package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time metadata, overridden via -ldflags.
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("guesthub %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
