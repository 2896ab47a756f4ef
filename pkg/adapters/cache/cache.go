// Package cache provides an in-process LRU cache in front of the node and
// talk stores.
package cache

import (
	"context"
	"fmt"

	"github.com/aretw0/talkweave/pkg/adapters/forward"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Store caches point lookups of the wrapped stores. Returned values are
// copies; callers may not observe each other's mutations.
type Store struct {
	forward.Optional

	nodes   *lru.Cache[int, domain.DialogueNode]
	prev    *lru.Cache[int, []int]
	talks   *lru.Cache[int, domain.TalkUnit]
	observe func(op, result string)
}

type Option func(*Store)

// WithObserver reports every cached lookup as (op, "hit"|"miss").
func WithObserver(fn func(op, result string)) Option {
	return func(s *Store) {
		s.observe = fn
	}
}

// New wraps nodes and talks with caches holding at most size entries each.
func New(size int, nodes ports.NodeStore, talks ports.TalkStore, opts ...Option) (*Store, error) {
	nc, err := lru.New[int, domain.DialogueNode](size)
	if err != nil {
		return nil, fmt.Errorf("node cache: %w", err)
	}
	pc, err := lru.New[int, []int](size)
	if err != nil {
		return nil, fmt.Errorf("predecessor cache: %w", err)
	}
	tc, err := lru.New[int, domain.TalkUnit](size)
	if err != nil {
		return nil, fmt.Errorf("talk cache: %w", err)
	}

	s := &Store{
		Optional: forward.Optional{Nodes: nodes, Talks: talks},
		nodes:    nc,
		prev:     pc,
		talks:    tc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) record(op string, hit bool) {
	if s.observe == nil {
		return
	}
	if hit {
		s.observe(op, "hit")
	} else {
		s.observe(op, "miss")
	}
}

// Purge empties every cache.
func (s *Store) Purge() {
	s.nodes.Purge()
	s.prev.Purge()
	s.talks.Purge()
}

// Len returns the number of cached nodes.
func (s *Store) Len() int {
	return s.nodes.Len()
}

func cloneNode(n domain.DialogueNode) domain.DialogueNode {
	n.Next = append([]int(nil), n.Next...)
	return n
}

// Get implements ports.NodeStore.
func (s *Store) Get(ctx context.Context, id int) (*domain.DialogueNode, error) {
	if n, ok := s.nodes.Get(id); ok {
		s.record("get", true)
		c := cloneNode(n)
		return &c, nil
	}
	s.record("get", false)

	n, err := s.Nodes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.nodes.Add(id, cloneNode(*n))
	return n, nil
}

// GetMany implements ports.NodeStore.
func (s *Store) GetMany(ctx context.Context, ids []int) ([]domain.DialogueNode, error) {
	found := make(map[int]domain.DialogueNode, len(ids))
	var missing []int
	for _, id := range ids {
		if n, ok := s.nodes.Get(id); ok {
			found[id] = cloneNode(n)
			continue
		}
		missing = append(missing, id)
	}
	s.record("get_many", len(missing) == 0)

	if len(missing) > 0 {
		fetched, err := s.Nodes.GetMany(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, n := range fetched {
			s.nodes.Add(n.ID, cloneNode(n))
			found[n.ID] = n
		}
	}

	out := make([]domain.DialogueNode, 0, len(ids))
	for _, id := range ids {
		if n, ok := found[id]; ok && n.HasContent() {
			out = append(out, n)
		}
	}
	return out, nil
}

// PredecessorsOf implements ports.NodeStore.
func (s *Store) PredecessorsOf(ctx context.Context, id int) ([]int, error) {
	if p, ok := s.prev.Get(id); ok {
		s.record("predecessors", true)
		return append([]int(nil), p...), nil
	}
	s.record("predecessors", false)

	p, err := s.Nodes.PredecessorsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	s.prev.Add(id, append([]int(nil), p...))
	return p, nil
}

// GetTalk implements ports.TalkStore.
func (s *Store) GetTalk(ctx context.Context, id int) (*domain.TalkUnit, error) {
	if t, ok := s.talks.Get(id); ok {
		s.record("get_talk", true)
		return &t, nil
	}
	s.record("get_talk", false)

	t, err := s.Talks.GetTalk(ctx, id)
	if err != nil {
		return nil, err
	}
	s.talks.Add(id, *t)
	return t, nil
}
