// Package cli implements the sprintlens command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "sprintlens",
	Version: Version,
	Short:   "Analytics for sprints and project flow",
	Long: `SprintLens computes project analytics from tracker data.
It answers three questions about a sprint or project:
1. Are we on track?
2. How fast are we really moving?
3. Where is work piling up?`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
