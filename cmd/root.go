// Package cmd provides the command-line interface for csim.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "csim",
	Short: "csim replays memory-access traces against a cache model.",
	Long: `csim replays memory-access traces against a set-associative ` +
		`cache model with LRU replacement and a write-back, ` +
		`write-allocate policy, reporting hits, misses, evictions, and ` +
		`dirty-byte traffic.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file can provide defaults such as CSIM_MONITOR_PORT. Its
	// absence is not an error.
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Cannot load .env: %s\n", err)
	}

	err = rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
