// Package wikitext renders resolved dialogue branches as indented wiki
// transcript lines.
package wikitext

import (
	"log/slog"
	"strings"

	"github.com/aretw0/talkweave/internal/logging"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
)

// ReturnMarker closes a branch that loops back to an earlier option menu.
const ReturnMarker = ";(Return to option selection)"

// Renderer turns a domain.Branch into wikitext.
type Renderer struct {
	voices ports.VoiceSource
	logger *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithVoices attaches audio file prefixes to voiced lines.
func WithVoices(v ports.VoiceSource) Option {
	return func(r *Renderer) {
		r.voices = v
	}
}

// WithLogger sets the logger used for skipped lines.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartDepth returns the indentation a talk's transcript starts at. A talk
// opening on a player option sits one level deeper than base.
func (r *Renderer) StartDepth(b domain.Branch, base int) int {
	if len(b) > 0 && r.IsPlayerOption(b[0].Node) {
		return base + 1
	}
	return base
}

// Render writes b at the given depth. Branches whose first node is already
// recorded on page are skipped. A nil page renders without cross-section
// deduplication.
func (r *Renderer) Render(page *Page, b domain.Branch, depth int) string {
	if page == nil {
		page = NewPage()
	}
	return strings.TrimSpace(r.render(page, b, depth, nil, false, page.scope()))
}

// IsPlayerOption reports whether n is rendered as a selectable option rather
// than a spoken player line.
func (r *Renderer) IsPlayerOption(n domain.DialogueNode) bool {
	if !n.Speaker.IsPlayer() {
		return false
	}
	if n.Speaker.Name != "" && n.ShowType != domain.ShowForceSelect {
		return false
	}
	return len(r.voiceItems(n.ID)) == 0
}

func (r *Renderer) voiceItems(id int) []domain.VoiceItem {
	if r.voices == nil {
		return nil
	}
	return r.voices.VoiceItems(id)
}

type writer struct {
	sb        strings.Builder
	lastBlack bool
}

// line appends one line, separating narrator blocks from dialogue with a
// blank line.
func (w *writer) line(s string, black bool) {
	if s == "" {
		return
	}
	if w.sb.Len() > 0 {
		if black != w.lastBlack {
			w.sb.WriteByte('\n')
		}
		w.sb.WriteByte('\n')
	}
	w.sb.WriteString(s)
	w.lastBlack = black
}

func (r *Renderer) render(page *Page, lines domain.Branch, depth int, origin *domain.DialogueNode, originFirst bool, scope nodeSet) string {
	var w writer
	if id, ok := lines.FirstID(); ok {
		scope[id] = struct{}{}
		page.mark(id)
	}

	chained := 0
	var prev *domain.Step

	for i := range lines {
		step := &lines[i]
		node := step.Node

		dicon := colons(depth)
		if i == 0 && node.Speaker.IsPlayer() {
			if origin != nil && origin.Speaker.IsPlayer() && !originFirst {
				depth++
			} else {
				dicon = colons(max(depth-1, 1))
			}
		}
		prefix := colons(depth)

		if prev != nil && r.IsPlayerOption(prev.Node) && r.IsPlayerOption(node) &&
			(len(prev.Node.Next) == 1 || opensOnPlayer(prev.Fork)) && prev.Node.LeadsTo(node.ID) {
			chained++
		} else {
			chained = 0
		}

		switch {
		case step.Cycle:
			if node.Speaker.IsPlayer() {
				w.line(dicon+ReturnMarker, false)
			} else {
				w.line(strings.TrimSuffix(dicon, ":")+ReturnMarker, false)
			}
		case !node.HasContent():
		default:
			w.line(r.line(node, prefix, dicon, chained), node.Speaker.IsBlackScreen())
		}

		if step.Fork != nil {
			r.renderFork(&w, page, step.Fork, depth, dicon, node, i == 0, scope)
		}
		prev = step
	}
	return w.sb.String()
}

func (r *Renderer) renderFork(w *writer, page *Page, fork *domain.Fork, depth int, dicon string, node domain.DialogueNode, first bool, scope nodeSet) {
	inner := scope.clone()
	for _, b := range fork.Branches {
		if id, ok := b.FirstID(); ok {
			inner[id] = struct{}{}
		}
	}

	var included, excluded int
	for _, b := range fork.Branches {
		id, ok := b.FirstID()
		if !ok {
			continue
		}
		if scope.has(id) {
			excluded++
			continue
		}
		included++
		w.line(r.render(page, b, depth+1, &node, first, inner), false)
	}
	if included == 0 && excluded > 0 {
		w.line(dicon+ReturnMarker, false)
	}
}

func (r *Renderer) line(n domain.DialogueNode, prefix, dicon string, chained int) string {
	text := n.Text
	vo := voicePrefix(r.voiceItems(n.ID), text, n.Speaker.Kind)

	switch {
	case n.Speaker.IsBlackScreen():
		return prefix + "{{Black Screen|" + vo + text + "}}"
	case n.Speaker.IsPlayer():
		if r.IsPlayerOption(n) {
			return dicon + colons(chained) + "{{DIcon}} " + text
		}
		name := n.Speaker.Name
		if name == "" {
			name = "(Traveler)"
		}
		return prefix + vo + "'''" + name + ":''' " + text
	case n.Speaker.Kind == domain.RoleNPC, n.Speaker.Kind == domain.RoleGadget:
		return prefix + vo + "'''" + n.Speaker.Name + ":''' " + text
	case n.Speaker.Kind == domain.RoleMateAvatar:
		return prefix + vo + "'''(Traveler's Sibling):''' " + text
	default:
		r.logger.Warn("skipping line with unknown speaker role", "node_id", n.ID, "role", string(n.Speaker.Kind))
		return ""
	}
}

// opensOnPlayer reports whether every sibling branch of fork starts with a
// player line.
func opensOnPlayer(fork *domain.Fork) bool {
	if fork == nil || len(fork.Branches) == 0 {
		return false
	}
	for _, b := range fork.Branches {
		if len(b) == 0 || !b[0].Node.Speaker.IsPlayer() {
			return false
		}
	}
	return true
}

func colons(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(":", n)
}
