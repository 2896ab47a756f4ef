package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/talkweave"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of talkweave",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "talkweave version %s\n", strings.TrimSpace(talkweave.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
