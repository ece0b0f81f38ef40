// scout is the command line client for installer discovery: run a
// discovery conversation from the terminal, or inspect stored runs.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Locate and profile UK bathroom installer businesses",
	Long: "Scout resolves a UK locality from a natural-language request,\n" +
		"finds validated bathroom installer businesses there, and extracts\n" +
		"structured contact profiles from their websites.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

func main() {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
