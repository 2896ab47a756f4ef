// Package dialogue reconstructs branch structure from a dialogue graph:
// the forward walk producing a domain.Branch and the backward walk finding
// the roots of a section.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/talkweave/internal/batch"
	"github.com/aretw0/talkweave/internal/logging"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
)

// Resolver walks a dialogue graph forward and builds its branch tree.
// It is safe for concurrent use; every call owns its own visited sets.
type Resolver struct {
	store    ports.NodeStore
	hooks    domain.Hooks
	logger   *slog.Logger
	parallel int
	visit    func(nodeID int)
}

// Option configures a Resolver or a Tracer.
type Option func(*options)

type options struct {
	hooks    domain.Hooks
	logger   *slog.Logger
	parallel int
	visit    func(int)
}

// WithHooks registers observability hooks.
func WithHooks(h domain.Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParallelism bounds the number of concurrent lookups issued for one
// fork (or one traceback layer). Values <= 1 keep lookups sequential.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallel = n
	}
}

// WithVisitFunc registers fn to be called with every node id a walk enters,
// including nodes without text. fn may be called concurrently when
// parallelism is above one.
func WithVisitFunc(fn func(nodeID int)) Option {
	return func(o *options) {
		o.visit = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   logging.NewNop(),
		parallel: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parallel < 1 {
		o.parallel = 1
	}
	return o
}

// NewResolver creates a resolver reading from store.
func NewResolver(store ports.NodeStore, opts ...Option) *Resolver {
	o := buildOptions(opts)
	return &Resolver{
		store:    store,
		hooks:    o.hooks,
		logger:   o.logger,
		parallel: o.parallel,
		visit:    o.visit,
	}
}

// Resolve loads the start node and walks forward from it.
// Returns domain.ErrNotFound if the start node does not exist.
func (r *Resolver) Resolve(ctx context.Context, startID int) (domain.Branch, error) {
	start, err := r.store.Get(ctx, startID)
	if err != nil {
		return nil, fmt.Errorf("dialogue %d: %w", startID, err)
	}
	return r.ResolveFrom(ctx, *start)
}

// ResolveFrom walks forward from an already loaded node.
func (r *Resolver) ResolveFrom(ctx context.Context, start domain.DialogueNode) (domain.Branch, error) {
	return r.walk(ctx, start, visitedSet{})
}

// visitedSet is scoped to one path. It is copied at every fork so siblings
// never observe each other's visits.
type visitedSet map[int]struct{}

func (v visitedSet) has(id int) bool {
	_, ok := v[id]
	return ok
}

func (v visitedSet) clone() visitedSet {
	c := make(visitedSet, len(v))
	for id := range v {
		c[id] = struct{}{}
	}
	return c
}

func (r *Resolver) walk(ctx context.Context, start domain.DialogueNode, visited visitedSet) (domain.Branch, error) {
	var branch domain.Branch
	curr := &start

	for curr != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node := *curr

		if visited.has(node.ID) {
			r.logger.Debug("cycle detected", "node_id", node.ID)
			r.hooks.Cycle(ctx, node.ID)
			branch = append(branch, domain.Step{Node: node, Cycle: true})
			break
		}
		visited[node.ID] = struct{}{}
		if r.visit != nil {
			r.visit(node.ID)
		}

		next, err := r.store.GetMany(ctx, node.Next)
		if err != nil {
			return nil, fmt.Errorf("successors of %d: %w", node.ID, err)
		}

		switch len(next) {
		case 0:
			if node.HasContent() {
				branch = append(branch, domain.Step{Node: node})
			}
			curr = nil
		case 1:
			if node.HasContent() {
				branch = append(branch, domain.Step{Node: node})
			}
			curr = &next[0]
		default:
			fork, rejoin, err := r.fork(ctx, node, next, visited)
			if err != nil {
				return nil, err
			}
			branch = append(branch, domain.Step{Node: node, Fork: fork})
			curr = rejoin
		}
	}
	return branch, nil
}

// fork resolves every successor as its own branch, then truncates them at
// their first common non-player node. The returned node, if any, is where
// the outer walk continues.
func (r *Resolver) fork(ctx context.Context, node domain.DialogueNode, next []domain.DialogueNode, visited visitedSet) (*domain.Fork, *domain.DialogueNode, error) {
	paths := make([]visitedSet, len(next))
	for i := range next {
		paths[i] = visited.clone()
	}
	idx := make([]int, len(next))
	for i := range idx {
		idx[i] = i
	}

	branches, err := batch.Map(ctx, idx, r.parallel, func(ctx context.Context, i int) (domain.Branch, error) {
		return r.walk(ctx, next[i], paths[i])
	})
	if err != nil {
		return nil, nil, err
	}

	fork := &domain.Fork{Branches: branches}
	rejoin, ok := rejoinNode(branches)
	if !ok {
		r.logger.Debug("fork without rejoin", "node_id", node.ID, "branches", len(branches))
		r.hooks.Fork(ctx, &domain.ForkEvent{NodeID: node.ID, Branches: len(branches)})
		return fork, nil, nil
	}

	for i, b := range branches {
		if at := b.IndexOf(rejoin.ID); at >= 0 {
			branches[i] = b[:at:at]
		}
	}
	id := rejoin.ID
	fork.RejoinID = &id

	r.logger.Debug("fork rejoins", "node_id", node.ID, "branches", len(branches), "rejoin_id", id)
	r.hooks.Fork(ctx, &domain.ForkEvent{NodeID: node.ID, Branches: len(branches), RejoinID: &id})
	return fork, &rejoin, nil
}

// rejoinNode returns the first node, in the order of the first branch, that
// appears in every branch, has text and is not player-authored.
func rejoinNode(branches []domain.Branch) (domain.DialogueNode, bool) {
	if len(branches) == 0 {
		return domain.DialogueNode{}, false
	}

	counts := make(map[int]int)
	for _, b := range branches {
		seen := make(map[int]struct{}, len(b))
		for _, s := range b {
			if !s.Node.HasContent() {
				continue
			}
			if _, dup := seen[s.Node.ID]; dup {
				continue
			}
			seen[s.Node.ID] = struct{}{}
			counts[s.Node.ID]++
		}
	}

	for _, s := range branches[0] {
		if !s.Node.HasContent() || counts[s.Node.ID] != len(branches) {
			continue
		}
		if s.Node.Speaker.IsPlayer() {
			continue
		}
		return s.Node, true
	}
	return domain.DialogueNode{}, false
}
