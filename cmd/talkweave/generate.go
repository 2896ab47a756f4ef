package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/talkweave"
	"github.com/aretw0/talkweave/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var talkCmd = &cobra.Command{
	Use:   "talk <id>...",
	Short: "Generate the wiki markup of talk units",
	Long:  `Expands each talk unit with its dialogue tree and follow-up talks.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return generate(cmd, func(ctx context.Context, gen *talkweave.Generator) (*talkweave.Result, error) {
			return gen.GenerateTalks(ctx, ids...)
		})
	},
}

var dialogueCmd = &cobra.Command{
	Use:   "dialogue <id>...",
	Short: "Generate the wiki markup around dialogue lines",
	Long: `Traces each dialogue id back to the start of its section. Sections opening
a talk unit are expanded as talks, the others as plain dialogue.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return generate(cmd, func(ctx context.Context, gen *talkweave.Generator) (*talkweave.Result, error) {
			return gen.GenerateDialogues(ctx, ids...)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Generate the wiki markup of lines matching a text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return generate(cmd, func(ctx context.Context, gen *talkweave.Generator) (*talkweave.Result, error) {
			return gen.GenerateText(ctx, query)
		})
	},
}

func generate(cmd *cobra.Command, run func(context.Context, *talkweave.Generator) (*talkweave.Result, error)) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := run(cmd.Context(), a.gen)
	if err != nil {
		return err
	}
	if len(res.Missing) > 0 {
		a.logger.Warn("some ids were not found", "ids", res.Missing)
	}
	return printResult(cmd, res)
}

func printResult(cmd *cobra.Command, res *talkweave.Result) error {
	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	pretty, _ := cmd.Flags().GetBool("pretty")
	wrap, _ := cmd.Flags().GetBool("wrap")

	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case pretty:
		return printPretty(out, res)
	}

	if res.Empty() {
		fmt.Fprintln(cmd.ErrOrStderr(), "No dialogue text found.")
		return nil
	}
	_, err := fmt.Fprintln(out, res.String(wrap))
	return err
}

// printPretty renders the section tree through glamour. Output that is not
// a terminal gets the plain style so no escape codes leak into files.
func printPretty(w io.Writer, res *talkweave.Result) error {
	style, width := "notty", 0
	if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
		style, width = "", tui.Width(f)
	}
	render, err := tui.NewRenderer(style, width)
	if err != nil {
		return err
	}
	text, err := render(tui.Markdown(res.Sections))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, text)
	return err
}

func init() {
	for _, c := range []*cobra.Command{talkCmd, dialogueCmd, searchCmd} {
		c.Flags().Bool("json", false, "Print the section tree as JSON")
		c.Flags().Bool("pretty", false, "Render a terminal preview")
		c.Flags().Bool("wrap", false, "Enclose the output in Dialogue Start/End templates")
		rootCmd.AddCommand(c)
	}
}
