package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/talkweave/pkg/domain"
)

// Store is an id-indexed, in-memory dataset implementing ports.NodeStore,
// ports.TalkStore and every optional lookup capability.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	nodes   map[int]domain.DialogueNode
	talks   map[int]domain.TalkUnit
	prev    map[int][]int
	byTalk  map[int][]int
	voices  map[int][]domain.VoiceItem
	avatars map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes:   make(map[int]domain.DialogueNode),
		talks:   make(map[int]domain.TalkUnit),
		prev:    make(map[int][]int),
		byTalk:  make(map[int][]int),
		voices:  make(map[int][]domain.VoiceItem),
		avatars: make(map[string]string),
	}
}

// NewFromNodes creates a store holding the given nodes.
// This improves DX for tests.
func NewFromNodes(nodes ...domain.DialogueNode) (*Store, error) {
	s := NewStore()
	for _, n := range nodes {
		if err := s.AddNode(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddNode inserts a node and updates the reverse-edge index.
func (s *Store) AddNode(n domain.DialogueNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("duplicate dialogue id %d", n.ID)
	}
	n.Next = append([]int(nil), n.Next...)
	s.nodes[n.ID] = n
	for _, next := range n.Next {
		s.prev[next] = append(s.prev[next], n.ID)
	}
	if n.TalkID != 0 {
		s.byTalk[n.TalkID] = append(s.byTalk[n.TalkID], n.ID)
	}
	return nil
}

// AddTalk inserts a talk unit.
func (s *Store) AddTalk(t domain.TalkUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.talks[t.ID]; exists {
		return fmt.Errorf("duplicate talk id %d", t.ID)
	}
	s.talks[t.ID] = t
	return nil
}

// AddVoice attaches a voice item to a dialogue line.
func (s *Store) AddVoice(nodeID int, item domain.VoiceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices[nodeID] = append(s.voices[nodeID], item)
}

// AddAvatar registers a display name for an avatar id.
func (s *Store) AddAvatar(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatars[id] = name
}

// Get retrieves a node by id.
func (s *Store) Get(ctx context.Context, id int) (*domain.DialogueNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("dialogue %d: %w", id, domain.ErrNotFound)
	}
	n.Next = append([]int(nil), n.Next...)
	return &n, nil
}

// GetMany retrieves nodes in request order, dropping missing or empty ones.
func (s *Store) GetMany(ctx context.Context, ids []int) ([]domain.DialogueNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DialogueNode, 0, len(ids))
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok || !n.HasContent() {
			continue
		}
		n.Next = append([]int(nil), n.Next...)
		out = append(out, n)
	}
	return out, nil
}

// PredecessorsOf returns the nodes pointing at id.
func (s *Store) PredecessorsOf(ctx context.Context, id int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.prev[id]...), nil
}

// GetTalk retrieves a talk unit by id.
func (s *Store) GetTalk(ctx context.Context, id int) (*domain.TalkUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.talks[id]
	if !ok {
		return nil, fmt.Errorf("talk %d: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

// TalksByInitialNode returns the units starting at nodeID, ordered by id.
func (s *Store) TalksByInitialNode(ctx context.Context, nodeID int) ([]domain.TalkUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TalkUnit
	for _, t := range s.talks {
		if t.InitialNodeID == nodeID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DialogueIDsByTalk returns the ids of nodes owned by talkID, ordered by id.
func (s *Store) DialogueIDsByTalk(ctx context.Context, talkID int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := append([]int(nil), s.byTalk[talkID]...)
	sort.Ints(ids)
	return ids, nil
}

// SearchText returns ids of nodes whose text contains query (case-insensitive).
func (s *Store) SearchText(ctx context.Context, query string, limit int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	var ids []int
	for id, n := range s.nodes {
		if strings.Contains(strings.ToLower(n.Text), q) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids) // Deterministic order
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// VoiceItems implements ports.VoiceSource.
func (s *Store) VoiceItems(nodeID int) []domain.VoiceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.VoiceItem(nil), s.voices[nodeID]...)
}

// AvatarName implements ports.AvatarDirectory.
func (s *Store) AvatarName(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.avatars[id]
	return name, ok
}

// Len returns the number of dialogue nodes and talk units held.
func (s *Store) Len() (nodes, talks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.talks)
}
