// Package forward lets store decorators expose the optional capabilities of
// the stores they wrap.
package forward

import (
	"context"

	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
)

// Optional implements every optional port by delegating to Nodes or Talks.
// Capabilities the wrapped stores lack report domain.ErrUnsupported.
type Optional struct {
	Nodes ports.NodeStore
	Talks ports.TalkStore
}

// TalksByInitialNode implements ports.TalkByInitialNode.
func (o Optional) TalksByInitialNode(ctx context.Context, nodeID int) ([]domain.TalkUnit, error) {
	if f, ok := o.Talks.(ports.TalkByInitialNode); ok {
		return f.TalksByInitialNode(ctx, nodeID)
	}
	return nil, domain.ErrUnsupported
}

// DialogueIDsByTalk implements ports.TalkDialogueLister.
func (o Optional) DialogueIDsByTalk(ctx context.Context, talkID int) ([]int, error) {
	if l, ok := o.Nodes.(ports.TalkDialogueLister); ok {
		return l.DialogueIDsByTalk(ctx, talkID)
	}
	return nil, domain.ErrUnsupported
}

// SearchText implements ports.TextSearcher.
func (o Optional) SearchText(ctx context.Context, query string, limit int) ([]int, error) {
	if s, ok := o.Nodes.(ports.TextSearcher); ok {
		return s.SearchText(ctx, query, limit)
	}
	return nil, domain.ErrUnsupported
}

// VoiceItems implements ports.VoiceSource.
func (o Optional) VoiceItems(nodeID int) []domain.VoiceItem {
	if v, ok := o.Nodes.(ports.VoiceSource); ok {
		return v.VoiceItems(nodeID)
	}
	return nil
}

// AvatarName implements ports.AvatarDirectory.
func (o Optional) AvatarName(id string) (string, bool) {
	if a, ok := o.Nodes.(ports.AvatarDirectory); ok {
		return a.AvatarName(id)
	}
	return "", false
}
