package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/talkweave/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace <id>",
	Short: "Print the first dialogue ids of the section containing id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		roots, err := a.gen.TraceRoots(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		parts := make([]string, 0, len(roots))
		for _, r := range roots {
			parts = append(parts, strconv.Itoa(r))
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
		return err
	},
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <id>",
	Short: "Export the dialogue graph reachable from id",
	Long:  `Resolves the dialogue starting at id and outputs a Mermaid diagram (graph TD).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		tree, err := a.gen.Resolve(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		highlight, _ := cmd.Flags().GetIntSlice("highlight")
		_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tree, &graph.GraphOverlay{Highlight: highlight}))
		return err
	},
}

func init() {
	graphCmd.Flags().IntSlice("highlight", nil, "Dialogue ids to highlight")
	rootCmd.AddCommand(traceCmd, graphCmd)
}
