package ports

import (
	"context"

	"github.com/aretw0/talkweave/pkg/domain"
)

// NodeStore provides read-only access to dialogue nodes.
type NodeStore interface {
	// Get returns a single node. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int) (*domain.DialogueNode, error)

	// GetMany returns the nodes for ids in request order.
	// Ids that do not exist or whose node has no content are silently dropped.
	GetMany(ctx context.Context, ids []int) ([]domain.DialogueNode, error)

	// PredecessorsOf returns the ids of nodes listing id as a successor.
	PredecessorsOf(ctx context.Context, id int) ([]int, error)
}

// TalkStore provides read-only access to talk units.
type TalkStore interface {
	// GetTalk returns domain.ErrNotFound if the unit does not exist.
	GetTalk(ctx context.Context, id int) (*domain.TalkUnit, error)
}

// TalkByInitialNode is implemented by talk stores that can find the units
// starting at a given dialogue node.
type TalkByInitialNode interface {
	TalksByInitialNode(ctx context.Context, nodeID int) ([]domain.TalkUnit, error)
}

// TalkDialogueLister is implemented by node stores that index nodes by owning talk.
type TalkDialogueLister interface {
	DialogueIDsByTalk(ctx context.Context, talkID int) ([]int, error)
}

// TextSearcher is implemented by node stores that support free-text lookup.
type TextSearcher interface {
	// SearchText returns the ids of nodes whose text contains query, at most limit (<=0 for all).
	SearchText(ctx context.Context, query string, limit int) ([]int, error)
}

// VoiceSource provides the recorded audio files of a dialogue line.
type VoiceSource interface {
	VoiceItems(nodeID int) []domain.VoiceItem
}

// AvatarDirectory resolves playable character ids to display names.
type AvatarDirectory interface {
	AvatarName(id string) (string, bool)
}
