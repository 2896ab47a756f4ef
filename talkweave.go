package talkweave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/talkweave/internal/dialogue"
	"github.com/aretw0/talkweave/internal/logging"
	"github.com/aretw0/talkweave/internal/section"
	"github.com/aretw0/talkweave/internal/talk"
	"github.com/aretw0/talkweave/internal/wikitext"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
	"github.com/google/uuid"
)

// DefaultMaxMatches caps the number of free-text hits fed into one run.
const DefaultMaxMatches = 50

// Generator is the high-level entry point of the library. It turns talk
// units and dialogue ids into wikitext section trees.
type Generator struct {
	nodes      ports.NodeStore
	talks      ports.TalkStore
	voices     ports.VoiceSource
	avatars    ports.AvatarDirectory
	hooks      domain.Hooks
	logger     *slog.Logger
	maxDepth   int
	maxMatches int
	parallel   int
}

// Option defines a functional option for configuring the Generator.
type Option func(*Generator)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(g *Generator) {
		g.hooks = hooks
	}
}

// WithMaxDepth limits how deep next talks are expanded (negative: unlimited).
func WithMaxDepth(n int) Option {
	return func(g *Generator) {
		g.maxDepth = n
	}
}

// WithMaxMatches caps free-text hits per request (<= 0: unlimited).
func WithMaxMatches(n int) Option {
	return func(g *Generator) {
		g.maxMatches = n
	}
}

// WithParallelForks bounds concurrent lookups for the siblings of one fork
// and for one traceback layer.
func WithParallelForks(n int) Option {
	return func(g *Generator) {
		g.parallel = n
	}
}

// WithVoices sets the voice source. Defaults to the node store when it
// implements ports.VoiceSource.
func WithVoices(v ports.VoiceSource) Option {
	return func(g *Generator) {
		g.voices = v
	}
}

// WithAvatars sets the avatar directory. Defaults to the node store when it
// implements ports.AvatarDirectory.
func WithAvatars(a ports.AvatarDirectory) Option {
	return func(g *Generator) {
		g.avatars = a
	}
}

// New creates a Generator reading dialogue from nodes and talk units from talks.
func New(nodes ports.NodeStore, talks ports.TalkStore, opts ...Option) *Generator {
	g := &Generator{
		nodes:      nodes,
		talks:      talks,
		maxDepth:   -1,
		maxMatches: DefaultMaxMatches,
		parallel:   1,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logging.NewNop()
	}
	if g.voices == nil {
		g.voices, _ = nodes.(ports.VoiceSource)
	}
	if g.avatars == nil {
		g.avatars, _ = nodes.(ports.AvatarDirectory)
	}
	return g
}

// Result is the output of one generation run.
type Result struct {
	RunID    string                  `json:"run_id"`
	Sections []*domain.SectionResult `json:"sections"`

	// Missing lists requested ids that do not exist.
	Missing []int `json:"missing,omitempty"`
}

// Empty reports whether the run resolved sections but none carries text.
func (r *Result) Empty() bool {
	for _, s := range r.Sections {
		if s.String(false) != "" {
			return false
		}
	}
	return true
}

// String concatenates every section. With wrap set the whole page is
// enclosed in Dialogue Start/End templates.
func (r *Result) String(wrap bool) string {
	parts := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		if text := s.String(false); text != "" {
			parts = append(parts, text)
		}
	}
	out := strings.Join(parts, "\n")
	if wrap {
		return "{{Dialogue Start}}\n" + out + "\n{{Dialogue End}}"
	}
	return out
}

// run holds the state of one generation request.
type run struct {
	id      string
	kind    string
	start   time.Time
	logger  *slog.Logger
	acc     *talk.Accumulator
	builder *section.Builder
	result  *Result
}

func (g *Generator) newRun(kind string) *run {
	id := uuid.NewString()
	log := g.logger.With("run", id, "kind", kind)
	return &run{
		id:     id,
		kind:   kind,
		start:  time.Now(),
		logger: log,
		acc: talk.NewAccumulator(g.nodes, g.talks,
			talk.WithHooks(g.hooks),
			talk.WithLogger(log),
			talk.WithMaxDepth(g.maxDepth),
			talk.WithParallelForks(g.parallel),
		),
		builder: section.NewBuilder(
			wikitext.NewRenderer(wikitext.WithVoices(g.voices), wikitext.WithLogger(log)),
			section.WithAvatars(g.avatars),
		),
		result: &Result{RunID: id},
	}
}

// finish reports the run and applies the not-found rule: a request that
// resolved nothing because every id was missing fails with
// domain.ErrNotFound. Store failures discard the partial result.
func (g *Generator) finish(ctx context.Context, r *run, err error) (*Result, error) {
	res := r.result
	if err == nil && len(res.Sections) == 0 && len(res.Missing) > 0 {
		err = fmt.Errorf("ids %v: %w", res.Missing, domain.ErrNotFound)
	}

	g.hooks.Run(ctx, &domain.RunEvent{
		RunID:    r.id,
		Kind:     r.kind,
		Sections: len(res.Sections),
		Missing:  len(res.Missing),
		Duration: time.Since(r.start),
		Err:      err,
	})
	if err != nil {
		r.logger.Debug("generation failed", "err", err)
		return nil, err
	}
	r.logger.Debug("generation finished", "sections", len(res.Sections), "missing", len(res.Missing))
	return res, nil
}

// GenerateTalks expands each talk unit with its follow-ups. Units already
// shown by an earlier id of the same request are not repeated.
func (g *Generator) GenerateTalks(ctx context.Context, ids ...int) (*Result, error) {
	r := g.newRun("talk")
	for _, id := range ids {
		if err := g.addTalk(ctx, r, id); err != nil {
			return g.finish(ctx, r, err)
		}
	}
	return g.finish(ctx, r, nil)
}

func (g *Generator) addTalk(ctx context.Context, r *run, id int) error {
	rt, err := r.acc.Expand(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.Warn("talk not found", "talk_id", id)
		r.result.Missing = append(r.result.Missing, id)
		return nil
	}
	if err != nil {
		return err
	}
	if rt != nil {
		r.result.Sections = append(r.result.Sections, r.builder.Talk(rt))
	}
	return nil
}

// GenerateDialogues traces each dialogue id back to the start of its
// section. Roots that open a talk unit are expanded as talks; the others are
// rendered as plain dialogue sections.
func (g *Generator) GenerateDialogues(ctx context.Context, ids ...int) (*Result, error) {
	r := g.newRun("dialogue")
	for _, id := range ids {
		if err := g.addDialogue(ctx, r, id); err != nil {
			return g.finish(ctx, r, err)
		}
	}
	return g.finish(ctx, r, nil)
}

// GenerateText searches dialogue text and generates the sections of the
// first hits. It returns domain.ErrUnsupported when the node store cannot
// search.
func (g *Generator) GenerateText(ctx context.Context, query string) (*Result, error) {
	searcher, ok := g.nodes.(ports.TextSearcher)
	if !ok {
		return nil, fmt.Errorf("text search: %w", domain.ErrUnsupported)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrNotFound)
	}

	ids, err := searcher.SearchText(ctx, query, g.maxMatches)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no dialogue matches %q: %w", query, domain.ErrNotFound)
	}
	g.logger.Debug("text search", "query", query, "hits", len(ids))
	return g.GenerateDialogues(ctx, ids...)
}

func (g *Generator) addDialogue(ctx context.Context, r *run, id int) error {
	if _, err := g.nodes.Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("dialogue not found", "node_id", id)
			r.result.Missing = append(r.result.Missing, id)
			return nil
		}
		return fmt.Errorf("dialogue %d: %w", id, err)
	}

	// A node that opens a talk is shown as that talk, without tracing back.
	found, err := g.addTalksAt(ctx, r, id, id)
	if err != nil || found {
		return err
	}

	roots, err := g.TraceRoots(ctx, id)
	if err != nil {
		return err
	}
	for _, root := range roots {
		found, err := g.addTalksAt(ctx, r, root, id)
		if err != nil {
			return err
		}
		if found || r.acc.Reached(root) {
			continue
		}
		tree, err := r.acc.ResolveDialogue(ctx, root)
		if err != nil {
			return err
		}
		if len(tree) > 0 {
			r.result.Sections = append(r.result.Sections, r.builder.Dialogue(tree, id))
		}
	}
	return nil
}

// addTalksAt expands the talk units whose first dialogue is nodeID. It
// reports whether any unit starts there.
func (g *Generator) addTalksAt(ctx context.Context, r *run, nodeID, matched int) (bool, error) {
	finder, ok := g.talks.(ports.TalkByInitialNode)
	if !ok {
		return false, nil
	}
	units, err := finder.TalksByInitialNode(ctx, nodeID)
	if err != nil && !errors.Is(err, domain.ErrUnsupported) {
		return false, fmt.Errorf("talks starting at %d: %w", nodeID, err)
	}
	for _, u := range units {
		rt, err := r.acc.ExpandUnit(ctx, u)
		if err != nil {
			return false, err
		}
		if rt != nil {
			s := r.builder.Talk(rt)
			s.Metadata = append(s.Metadata, section.MatchProp(matched))
			r.result.Sections = append(r.result.Sections, s)
		}
	}
	return len(units) > 0, nil
}

// TraceRoots returns the first nodes of the section containing id.
func (g *Generator) TraceRoots(ctx context.Context, id int) ([]int, error) {
	if _, err := g.nodes.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("dialogue %d: %w", id, err)
	}
	tracer := dialogue.NewTracer(g.nodes,
		dialogue.WithLogger(g.logger),
		dialogue.WithParallelism(g.parallel),
	)
	return tracer.Roots(ctx, id)
}

// Resolve returns the branch tree reachable from dialogue id.
func (g *Generator) Resolve(ctx context.Context, id int) (domain.Branch, error) {
	resolver := dialogue.NewResolver(g.nodes,
		dialogue.WithHooks(g.hooks),
		dialogue.WithLogger(g.logger),
		dialogue.WithParallelism(g.parallel),
	)
	return resolver.Resolve(ctx, id)
}
