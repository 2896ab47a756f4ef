// Package talk expands the talk unit graph of one generation run.
package talk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/talkweave/internal/dialogue"
	"github.com/aretw0/talkweave/internal/logging"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
)

// Accumulator expands talk units and their follow-ups, each unit at most once
// per run. Create one per generation request. It is not safe for concurrent
// use.
type Accumulator struct {
	talks    ports.TalkStore
	lister   ports.TalkDialogueLister
	resolver *dialogue.Resolver
	hooks    domain.Hooks
	logger   *slog.Logger
	maxDepth int

	visited map[int]struct{}
	top     []domain.TalkUnit

	mu      sync.Mutex
	reached map[int]struct{}
}

// Option configures an Accumulator.
type Option func(*config)

type config struct {
	hooks    domain.Hooks
	logger   *slog.Logger
	maxDepth int
	parallel int
}

// WithHooks registers observability hooks for units and the underlying walks.
func WithHooks(h domain.Hooks) Option {
	return func(c *config) {
		c.hooks = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxDepth stops next-unit expansion for units at depth n or deeper.
// Top-level units are at depth 0. Negative values mean unlimited.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// WithParallelForks bounds concurrent sibling resolution inside each walk.
func WithParallelForks(n int) Option {
	return func(c *config) {
		c.parallel = n
	}
}

// NewAccumulator creates an empty run state. When nodes also implements
// ports.TalkDialogueLister, dialogue owned by a unit but not reached from its
// initial node is collected as other dialogue.
func NewAccumulator(nodes ports.NodeStore, talks ports.TalkStore, opts ...Option) *Accumulator {
	c := config{
		logger:   logging.NewNop(),
		maxDepth: -1,
		parallel: 1,
	}
	for _, opt := range opts {
		opt(&c)
	}

	a := &Accumulator{
		talks:    talks,
		hooks:    c.hooks,
		logger:   c.logger,
		maxDepth: c.maxDepth,
		visited:  make(map[int]struct{}),
		reached:  make(map[int]struct{}),
	}
	if l, ok := nodes.(ports.TalkDialogueLister); ok {
		a.lister = l
	}
	a.resolver = dialogue.NewResolver(nodes,
		dialogue.WithHooks(c.hooks),
		dialogue.WithLogger(c.logger),
		dialogue.WithParallelism(c.parallel),
		dialogue.WithVisitFunc(a.markReached),
	)
	return a
}

// Expand loads unit id and expands it as a top-level unit.
// It returns domain.ErrNotFound if the unit does not exist and (nil, nil) if
// the unit was already expanded in this run.
func (a *Accumulator) Expand(ctx context.Context, id int) (*domain.ResolvedTalk, error) {
	unit, err := a.talks.GetTalk(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("talk %d: %w", id, err)
	}
	return a.expand(ctx, *unit, 0)
}

// ExpandUnit expands an already loaded unit as a top-level unit.
func (a *Accumulator) ExpandUnit(ctx context.Context, unit domain.TalkUnit) (*domain.ResolvedTalk, error) {
	return a.expand(ctx, unit, 0)
}

// ResolveDialogue resolves a plain dialogue tree, recording its nodes as
// reached for the rest of the run. A missing start node yields an empty tree.
func (a *Accumulator) ResolveDialogue(ctx context.Context, nodeID int) (domain.Branch, error) {
	tree, err := a.resolver.Resolve(ctx, nodeID)
	if errors.Is(err, domain.ErrNotFound) {
		a.logger.Warn("dialogue not found", "node_id", nodeID)
		a.hooks.Drop(ctx, "missing_dialogue", nodeID)
		return nil, nil
	}
	return tree, err
}

// TopLevel returns the units expanded at depth 0, in expansion order.
func (a *Accumulator) TopLevel() []domain.TalkUnit {
	return append([]domain.TalkUnit(nil), a.top...)
}

// Expanded reports whether unit id was already expanded in this run.
func (a *Accumulator) Expanded(id int) bool {
	_, ok := a.visited[id]
	return ok
}

// Reached reports whether any walk of this run entered node id.
func (a *Accumulator) Reached(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.reached[id]
	return ok
}

func (a *Accumulator) markReached(id int) {
	a.mu.Lock()
	a.reached[id] = struct{}{}
	a.mu.Unlock()
}

func (a *Accumulator) expand(ctx context.Context, unit domain.TalkUnit, depth int) (*domain.ResolvedTalk, error) {
	if _, ok := a.visited[unit.ID]; ok {
		return nil, nil
	}
	a.visited[unit.ID] = struct{}{}

	log := a.logger.With("talk_id", unit.ID, "depth", depth)
	log.Debug("expanding talk", "initial_node_id", unit.InitialNodeID)
	a.hooks.Unit(ctx, &domain.UnitEvent{UnitID: unit.ID, TopLevel: depth == 0})

	rt := &domain.ResolvedTalk{Unit: unit}
	if unit.InitialNodeID != 0 {
		tree, err := a.ResolveDialogue(ctx, unit.InitialNodeID)
		if err != nil {
			return nil, err
		}
		rt.Tree = tree
	}
	if depth == 0 {
		a.top = append(a.top, unit)
	}

	other, err := a.otherDialogue(ctx, unit.ID)
	if err != nil {
		return nil, err
	}
	rt.Other = other

	if a.maxDepth >= 0 && depth >= a.maxDepth {
		if len(unit.NextUnitIDs) > 0 {
			log.Debug("max depth reached, next talks not expanded", "next", len(unit.NextUnitIDs))
		}
		return rt, nil
	}

	var last *domain.ResolvedTalk
	for _, nextID := range unit.NextUnitIDs {
		next, err := a.talks.GetTalk(ctx, nextID)
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("next talk not found", "next_id", nextID)
			a.hooks.Drop(ctx, "missing_talk", nextID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("talk %d: %w", nextID, err)
		}

		if last != nil && next.InitialNodeID != 0 && last.Unit.InitialNodeID == next.InitialNodeID {
			log.Debug("next talk repeats previous opening", "next_id", nextID, "shared_with", last.Unit.ID)
			a.hooks.Unit(ctx, &domain.UnitEvent{UnitID: nextID, Placeholder: true})
			rt.Children = append(rt.Children, &domain.ResolvedTalk{
				Unit:        domain.TalkUnit{ID: nextID},
				Placeholder: true,
				SharedWith:  last.Unit.ID,
			})
			continue
		}

		child, err := a.expand(ctx, *next, depth+1)
		if err != nil {
			return nil, err
		}
		if child != nil {
			rt.Children = append(rt.Children, child)
			last = child
			continue
		}

		log.Debug("next talk shown elsewhere", "next_id", nextID)
		a.hooks.Unit(ctx, &domain.UnitEvent{UnitID: nextID, Placeholder: true})
		rt.Children = append(rt.Children, &domain.ResolvedTalk{
			Unit:        domain.TalkUnit{ID: nextID},
			Placeholder: true,
		})
	}
	return rt, nil
}

func (a *Accumulator) otherDialogue(ctx context.Context, unitID int) ([]domain.Branch, error) {
	if a.lister == nil {
		return nil, nil
	}
	ids, err := a.lister.DialogueIDsByTalk(ctx, unitID)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupported) {
			return nil, nil
		}
		return nil, fmt.Errorf("dialogue of talk %d: %w", unitID, err)
	}

	var out []domain.Branch
	for _, id := range ids {
		if a.Reached(id) {
			continue
		}
		tree, err := a.ResolveDialogue(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(tree) > 0 {
			out = append(out, tree)
		}
	}
	return out, nil
}
