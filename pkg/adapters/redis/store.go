package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/talkweave/pkg/adapters/forward"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store is a read-through Redis cache in front of a node store and a talk
// store. Several talkweave processes can share it. Misses are not cached.
type Store struct {
	forward.Optional

	client  *backend.Client
	prefix  string
	ttl     time.Duration
	observe func(op, result string)
}

type Option func(*Store)

// WithTTL sets the expiration of cached entries. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithObserver reports every cached lookup as (op, "hit"|"miss").
func WithObserver(fn func(op, result string)) Option {
	return func(s *Store) {
		s.observe = fn
	}
}

// New creates a cache connected to the Redis server at address.
func New(address, password string, db int, nodes ports.NodeStore, talks ports.TalkStore, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, nodes, talks, opts...)
}

// NewFromClient creates a cache from an existing client.
func NewFromClient(client *backend.Client, nodes ports.NodeStore, talks ports.TalkStore, opts ...Option) *Store {
	store := &Store{
		Optional: forward.Optional{Nodes: nodes, Talks: talks},
		client:   client,
		prefix:   "talkweave:",
		ttl:      0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(kind string, id int) string {
	return s.prefix + kind + ":" + strconv.Itoa(id)
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

// load reads a cached JSON value. It reports false on a miss.
func (s *Store) load(ctx context.Context, key string, v any) (bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal(val, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get implements ports.NodeStore.
func (s *Store) Get(ctx context.Context, id int) (*domain.DialogueNode, error) {
	var n domain.DialogueNode
	hit, err := s.load(ctx, s.key("node", id), &n)
	if err != nil {
		return nil, err
	}
	s.record("get", hit)
	if hit {
		return &n, nil
	}

	node, err := s.Nodes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.key("node", id), node); err != nil {
		return nil, err
	}
	return node, nil
}

// GetMany implements ports.NodeStore. Cached nodes are read with one MGET;
// the rest are fetched from the wrapped store in a single call.
func (s *Store) GetMany(ctx context.Context, ids []int) ([]domain.DialogueNode, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("node", id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to mget from redis: %w", err)
	}

	found := make(map[int]domain.DialogueNode, len(ids))
	var missing []int
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var n domain.DialogueNode
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
		found[n.ID] = n
	}
	s.record("get_many", len(missing) == 0)

	if len(missing) > 0 {
		fetched, err := s.Nodes.GetMany(ctx, missing)
		if err != nil {
			return nil, err
		}
		pipe := s.client.Pipeline()
		for _, n := range fetched {
			data, err := json.Marshal(n)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal node %d: %w", n.ID, err)
			}
			pipe.Set(ctx, s.key("node", n.ID), data, s.ttl)
			found[n.ID] = n
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to save to redis: %w", err)
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

// PredecessorsOf implements ports.NodeStore. Empty results are cached too.
func (s *Store) PredecessorsOf(ctx context.Context, id int) ([]int, error) {
	var prev []int
	hit, err := s.load(ctx, s.key("prev", id), &prev)
	if err != nil {
		return nil, err
	}
	s.record("predecessors", hit)
	if hit {
		return prev, nil
	}

	prev, err = s.Nodes.PredecessorsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		prev = []int{}
	}
	if err := s.save(ctx, s.key("prev", id), prev); err != nil {
		return nil, err
	}
	return prev, nil
}

// GetTalk implements ports.TalkStore.
func (s *Store) GetTalk(ctx context.Context, id int) (*domain.TalkUnit, error) {
	var t domain.TalkUnit
	hit, err := s.load(ctx, s.key("talk", id), &t)
	if err != nil {
		return nil, err
	}
	s.record("get_talk", hit)
	if hit {
		return &t, nil
	}

	unit, err := s.Talks.GetTalk(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.key("talk", id), unit); err != nil {
		return nil, err
	}
	return unit, nil
}
