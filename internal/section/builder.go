// Package section composes resolved talks and dialogue into the
// presentation-facing domain.SectionResult tree.
package section

import (
	"strconv"

	"github.com/aretw0/talkweave/internal/wikitext"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
)

// Link templates and fixed section texts.
const (
	DialogueLink = "/branch-dialogue?q={}"
	QuestLink    = "/quests/{}"

	NextTalkHelp = "An immediate (but possibly conditional) continuation from the parent talk. " +
		"This can happen for conditional dialogues and branching."

	PlaceholderMessage = "This section contains dialogue but wasn't shown because the section is already present on the page."
)

// Builder renders sections onto a single page. Sections built by the same
// Builder share cross-section deduplication.
type Builder struct {
	renderer *wikitext.Renderer
	page     *wikitext.Page
	rules    Rules
	avatars  ports.AvatarDirectory
}

// Option configures a Builder.
type Option func(*Builder)

// WithRules replaces the precondition rules.
func WithRules(r Rules) Option {
	return func(b *Builder) {
		b.rules = r
	}
}

// WithAvatars resolves avatar ids in precondition metadata.
func WithAvatars(a ports.AvatarDirectory) Option {
	return func(b *Builder) {
		b.avatars = a
	}
}

// NewBuilder creates a builder writing to a fresh page.
func NewBuilder(r *wikitext.Renderer, opts ...Option) *Builder {
	b := &Builder{
		renderer: r,
		page:     wikitext.NewPage(),
		rules:    DefaultRules(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Page returns the page shared by every section of this builder.
func (b *Builder) Page() *wikitext.Page {
	return b.page
}

// Talk builds the section of a resolved talk and, recursively, of its
// follow-ups.
func (b *Builder) Talk(rt *domain.ResolvedTalk) *domain.SectionResult {
	return b.talk(rt, "Talk", "", 1)
}

func (b *Builder) talk(rt *domain.ResolvedTalk, title, help string, depth int) *domain.SectionResult {
	u := rt.Unit
	s := &domain.SectionResult{
		ID:       TalkAnchor(u.ID),
		Title:    title,
		HelpText: help,
		Metadata: b.talkMetadata(u),
	}

	depth = b.renderer.StartDepth(rt.Tree, depth)
	s.Body = b.renderer.Render(b.page, rt.Tree, depth)

	for _, other := range rt.Other {
		s.Children = append(s.Children, b.dialogue(other, "OtherDialogue_", "Other Dialogue"))
	}
	for _, child := range rt.Children {
		if child.Placeholder {
			s.Children = append(s.Children, placeholder(child))
			continue
		}
		s.Children = append(s.Children, b.talk(child, "Next Talk", NextTalkHelp, depth))
	}
	return s
}

// Dialogue builds a section for a dialogue tree that belongs to no talk.
// A non-zero matched records the dialogue id the section was looked up by.
func (b *Builder) Dialogue(tree domain.Branch, matched int) *domain.SectionResult {
	s := b.dialogue(tree, "Dialogue_", "Dialogue")
	if matched != 0 {
		s.Metadata = append(s.Metadata, MatchProp(matched))
	}
	return s
}

// MatchProp labels the dialogue id a section was found through.
func MatchProp(id int) domain.MetaProp {
	return idProp("First Match Dialogue ID", DialogueLink, id)
}

func (b *Builder) dialogue(tree domain.Branch, idPrefix, title string) *domain.SectionResult {
	s := &domain.SectionResult{Title: title}
	if first, ok := tree.FirstID(); ok {
		s.ID = idPrefix + strconv.Itoa(first)
		s.Metadata = append(s.Metadata, idProp("First Dialogue ID", DialogueLink, first))
	}
	s.Body = b.renderer.Render(b.page, tree, b.renderer.StartDepth(tree, 1))
	return s
}

func (b *Builder) talkMetadata(u domain.TalkUnit) []domain.MetaProp {
	props := []domain.MetaProp{idProp("Talk ID", DialogueLink, u.ID)}
	if u.InitialNodeID != 0 {
		props = append(props, idProp("First Dialogue ID", DialogueLink, u.InitialNodeID))
	}
	if u.LoadType != "" && u.LoadType != domain.LoadTypeDefault {
		props = append(props, domain.MetaProp{Label: "Load Type", Values: []domain.MetaValue{{Value: u.LoadType}}})
	}
	if u.QuestID != 0 {
		props = append(props, idProp("Quest ID", QuestLink, u.QuestID))
	}
	if len(u.NpcIDs) > 0 {
		props = append(props, idProp("NPC ID", "", u.NpcIDs...))
	}
	if len(u.NextUnitIDs) > 0 {
		props = append(props, idProp("Next Talk IDs", DialogueLink, u.NextUnitIDs...))
	}
	for _, c := range u.Preconditions {
		props = append(props, b.rules.Apply(c, b.avatars))
	}
	return props
}

func placeholder(child *domain.ResolvedTalk) *domain.SectionResult {
	target := child.Unit.ID
	if child.SharedWith != 0 {
		target = child.SharedWith
	}
	return &domain.SectionResult{
		Title:    "Next Talk",
		Metadata: []domain.MetaProp{idProp("Talk ID", DialogueLink, child.Unit.ID)},
		Placeholder: &domain.Placeholder{
			TargetID: TalkAnchor(target),
			Message:  PlaceholderMessage,
		},
	}
}

// TalkAnchor is the section id of a talk unit.
func TalkAnchor(id int) string {
	return "Talk_" + strconv.Itoa(id)
}

func idProp(label, link string, ids ...int) domain.MetaProp {
	p := domain.MetaProp{Label: label, Link: link}
	for _, id := range ids {
		p.Values = append(p.Values, domain.MetaValue{Value: strconv.Itoa(id)})
	}
	return p
}
