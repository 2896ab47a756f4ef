package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/talkweave/pkg/domain"
)

// MaxLabel bounds the dialogue text shown inside a node.
const MaxLabel = 40

// GraphOverlay marks nodes to highlight on the graph.
type GraphOverlay struct {
	Highlight []int
}

// GenerateMermaid produces a Mermaid flowchart of every node of a resolved
// branch, sibling branches included. It applies semantic styling:
//   - First node: ((Circle))
//   - Player option: [/Parallelogram/]
//   - Black screen: [[Subroutine]]
//   - Default: [Rectangle]
//
// Edges to nodes outside the branch are omitted; edges closing a cycle are dotted.
func GenerateMermaid(b domain.Branch, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var order []domain.DialogueNode
	nodes := make(map[int]domain.DialogueNode)
	cycles := make(map[int]bool)
	b.Walk(func(s domain.Step) {
		if s.Cycle {
			cycles[s.Node.ID] = true
		}
		if _, ok := nodes[s.Node.ID]; ok {
			return
		}
		nodes[s.Node.ID] = s.Node
		order = append(order, s.Node)
	})

	first, hasFirst := b.FirstID()
	for _, n := range order {
		opener, closer := "[", "]"
		switch {
		case hasFirst && n.ID == first:
			opener, closer = "((", "))"
		case n.Speaker.IsPlayer():
			opener, closer = "[/", "/]"
		case n.Speaker.IsBlackScreen():
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(n.ID), opener, label(n), closer)
	}

	for _, n := range order {
		for _, next := range n.Next {
			if _, ok := nodes[next]; !ok {
				continue
			}
			arrow := "-->"
			if cycles[next] && next <= n.ID {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(n.ID), arrow, nodeID(next))
		}
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		seen := make(map[int]bool)
		for _, id := range overlay.Highlight {
			if _, ok := nodes[id]; !ok || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(id))
		}
	}

	return sb.String()
}

func nodeID(id int) string {
	if id < 0 {
		return fmt.Sprintf("m%d", -id)
	}
	return fmt.Sprintf("n%d", id)
}

func label(n domain.DialogueNode) string {
	text := n.Text
	if utf8.RuneCountInString(text) > MaxLabel {
		text = string([]rune(text)[:MaxLabel]) + "..."
	}
	parts := []string{fmt.Sprint(n.ID)}
	if n.Speaker.Name != "" {
		parts = append(parts, n.Speaker.Name)
	}
	if text != "" {
		parts = append(parts, text)
	}
	// Mermaid labels cannot hold double quotes.
	return strings.ReplaceAll(strings.Join(parts, ": "), "\"", "'")
}
