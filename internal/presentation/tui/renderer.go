package tui

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style picks light or dark from the terminal background.
func NewRenderer(style string, width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if style != "" {
		opts = []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or 0 when unknown.
func Width(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

var (
	boldRe    = regexp.MustCompile(`'''(.*?)'''`)
	blackRe   = regexp.MustCompile(`\{\{Black Screen\|(.*)\}\}`)
	commentRe = regexp.MustCompile(`<!--.*?-->`)
	voRe      = regexp.MustCompile(`\{\{A\|[^}]*\}\}\s*`)
)

// Markdown converts a section tree into markdown for terminal preview.
// Section titles become headings, metadata becomes a list and the wikitext
// body is mapped line by line onto nested quotes.
func Markdown(sections []*domain.SectionResult) string {
	var sb strings.Builder
	for _, s := range sections {
		writeSection(&sb, s, 2)
	}
	return strings.TrimSpace(sb.String())
}

func writeSection(sb *strings.Builder, s *domain.SectionResult, level int) {
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", level), s.Title)
	if s.HelpText != "" {
		fmt.Fprintf(sb, "_%s_\n\n", s.HelpText)
	}
	for _, m := range s.Metadata {
		values := make([]string, 0, len(m.Values))
		for _, v := range m.Values {
			if v.Bold {
				values = append(values, "**"+v.Value+"**")
			} else {
				values = append(values, v.Value)
			}
		}
		fmt.Fprintf(sb, "- %s: %s\n", m.Label, strings.Join(values, ", "))
	}
	if len(s.Metadata) > 0 {
		sb.WriteString("\n")
	}
	if s.Placeholder != nil {
		fmt.Fprintf(sb, "_%s (see %s)_\n\n", s.Placeholder.Message, s.Placeholder.TargetID)
	}
	if body := WikitextToMarkdown(s.Body); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n\n")
	}
	for _, child := range s.Children {
		writeSection(sb, child, level+1)
	}
}

// WikitextToMarkdown maps dialogue wikitext onto markdown: indentation
// colons become quote levels and templates become emphasis.
func WikitextToMarkdown(wikitext string) string {
	var out []string
	for _, line := range strings.Split(wikitext, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth := len(line) - len(strings.TrimLeft(line, ":"))
		text := strings.TrimLeft(line, ":")

		text = commentRe.ReplaceAllString(text, "")
		text = voRe.ReplaceAllString(text, "")
		text = strings.ReplaceAll(text, "{{DIcon}}", "▸")
		text = blackRe.ReplaceAllString(text, "_${1}_")
		text = boldRe.ReplaceAllString(text, "**${1}**")
		if strings.HasPrefix(text, ";") {
			text = "_" + strings.TrimPrefix(text, ";") + "_"
		}

		out = append(out, strings.Repeat("> ", depth)+strings.TrimSpace(text))
	}
	return strings.Join(out, "\n\n")
}
