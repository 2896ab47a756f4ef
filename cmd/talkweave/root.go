package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talkweave",
	Short: "Talkweave turns dialogue graphs into wiki markup",
	Long: `Talkweave resolves branching dialogue graphs and talk unit chains from a
YAML or Markdown dataset and renders them as nested wiki markup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("data", "", "Dataset file (yaml) or directory (loam)")
	rootCmd.PersistentFlags().String("format", "", "Dataset format: yaml or loam")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}
