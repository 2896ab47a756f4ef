package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/talkweave/internal/batch"
	"github.com/aretw0/talkweave/pkg/ports"
)

// Tracer walks the predecessor relation back to the first nodes of a section.
type Tracer struct {
	store    ports.NodeStore
	logger   *slog.Logger
	parallel int
}

// NewTracer creates a tracer reading from store. Only WithLogger and
// WithParallelism apply.
func NewTracer(store ports.NodeStore, opts ...Option) *Tracer {
	o := buildOptions(opts)
	return &Tracer{
		store:    store,
		logger:   o.logger,
		parallel: o.parallel,
	}
}

// Roots returns the nodes without predecessors from which nodeID is
// reachable, deduplicated, in discovery order. A node with no predecessors
// is its own root. When every reachable node has a predecessor (a closed
// cycle) the smallest id seen is returned.
func (t *Tracer) Roots(ctx context.Context, nodeID int) ([]int, error) {
	frontier := []int{nodeID}
	seen := make(map[int]struct{})
	isRoot := make(map[int]struct{})
	var roots []int

	for len(frontier) > 0 {
		preds, err := batch.Map(ctx, frontier, t.parallel, t.store.PredecessorsOf)
		if err != nil {
			return nil, fmt.Errorf("traceback from %d: %w", nodeID, err)
		}

		var next []int
		for i, id := range frontier {
			if len(preds[i]) == 0 {
				if _, ok := isRoot[id]; !ok {
					isRoot[id] = struct{}{}
					roots = append(roots, id)
				}
				continue
			}
			for _, p := range preds[i] {
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				next = append(next, p)
			}
		}
		t.logger.Debug("traceback layer", "node_id", nodeID, "frontier", len(frontier), "next", len(next))
		frontier = next
	}

	if len(roots) == 0 && len(seen) > 0 {
		lowest := nodeID
		first := true
		for id := range seen {
			if first || id < lowest {
				lowest = id
				first = false
			}
		}
		return []int{lowest}, nil
	}
	return roots, nil
}
