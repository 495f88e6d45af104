// Command chefbook serves the recipe gallery and drives a running server
// from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "chefbook",
	Short: "chefbook - a recipe gallery built with Go and Echo",
	Long: `chefbook keeps the recipes you cook in a small SQLite gallery.

Run "chefbook serve" to start the web app. The capture commands talk to a
running server the same way the recipe page does.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the chefbook version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "chefbook %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, captureCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
