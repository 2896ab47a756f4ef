// Package loam loads a dialogue dataset from a directory of Markdown
// documents with YAML frontmatter, one document per line or talk.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/talkweave/pkg/adapters/memory"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Loader reads dialogue documents from a Loam repository.
type Loader struct {
	Repo *loam.TypedRepository[Metadata]
}

// New creates a loader over repo.
func New(repo *loam.TypedRepository[Metadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a repository rooted at dir without versioning.
func Open(dir string) (*Loader, error) {
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("loam init failed for %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[Metadata](repo)), nil
}

// Dataset lists every document and converts it into a memory dataset.
func (l *Loader) Dataset(ctx context.Context) (memory.Dataset, error) {
	var ds memory.Dataset

	docs, err := l.Repo.List(ctx)
	if err != nil {
		return ds, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	for _, doc := range docs {
		meta := doc.Data
		id := meta.ID
		if id == 0 {
			id, err = idFromPath(doc.ID)
			if err != nil {
				return ds, err
			}
		}

		kind := meta.Kind
		if kind == "" {
			kind = KindLine
		}
		key := kind + ":" + strconv.Itoa(id)
		if existing, ok := seen[key]; ok {
			return ds, fmt.Errorf("collision detected: %s %d is defined in both '%s' and '%s'", kind, id, existing, doc.ID)
		}
		seen[key] = doc.ID

		switch kind {
		case KindLine:
			// List returns metadata only; the line text is the document body.
			full, err := l.Repo.Get(ctx, doc.ID)
			if err != nil {
				return ds, fmt.Errorf("loam get failed for %s: %w", doc.ID, err)
			}
			node, voices := buildLine(id, meta, full.Content)
			ds.Dialogues = append(ds.Dialogues, node)
			if len(voices) > 0 {
				if ds.Voices == nil {
					ds.Voices = make(map[int][]domain.VoiceItem)
				}
				ds.Voices[id] = voices
			}
		case KindTalk:
			unit, err := buildTalk(id, meta)
			if err != nil {
				return ds, fmt.Errorf("talk %s: %w", doc.ID, err)
			}
			ds.Talks = append(ds.Talks, unit)
		default:
			return ds, fmt.Errorf("document %s: unknown kind %q", doc.ID, kind)
		}

		for avatarID, name := range meta.Avatars {
			if ds.Avatars == nil {
				ds.Avatars = make(map[string]string)
			}
			ds.Avatars[avatarID] = name
		}
	}
	return ds, nil
}

// Load builds an in-memory store from every document in the repository.
func (l *Loader) Load(ctx context.Context) (*memory.Store, error) {
	ds, err := l.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return memory.NewFromDataset(ds)
}

func buildLine(id int, meta Metadata, content string) (domain.DialogueNode, []domain.VoiceItem) {
	node := domain.DialogueNode{
		ID:   id,
		Next: meta.Next,
		Speaker: domain.Speaker{
			Kind: domain.RoleKind(meta.Role),
			ID:   meta.SpeakerID,
			Name: meta.Name,
		},
		Text:     strings.TrimSpace(content),
		ShowType: domain.ShowType(meta.ShowType),
		TalkID:   meta.TalkID,
	}
	if node.Speaker.Kind == "" {
		node.Speaker.Kind = domain.RoleNPC
	}

	voices := make([]domain.VoiceItem, 0, len(meta.Voices))
	for _, v := range meta.Voices {
		voices = append(voices, domain.VoiceItem{File: v.File, Gender: v.Gender})
	}
	return node, voices
}

func buildTalk(id int, meta Metadata) (domain.TalkUnit, error) {
	unit := domain.TalkUnit{
		ID:            id,
		InitialNodeID: meta.InitialNodeID,
		NextUnitIDs:   meta.NextUnitIDs,
		QuestID:       meta.QuestID,
		LoadType:      meta.LoadType,
		NpcIDs:        meta.NpcIDs,
	}

	for _, raw := range meta.Preconditions {
		var cond domain.Condition
		if err := decodeWeak(raw, &cond); err != nil {
			return unit, fmt.Errorf("failed to decode precondition: %w", err)
		}
		if cond.Type == "" {
			return unit, fmt.Errorf("precondition missing type")
		}
		unit.Preconditions = append(unit.Preconditions, cond)
	}
	return unit, nil
}

func decodeWeak(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// idFromPath derives a numeric id from a document path such as "lines/12.md".
func idFromPath(docID string) (int, error) {
	base := path.Base(trimExtension(docID))
	id, err := strconv.Atoi(base)
	if err != nil {
		return 0, fmt.Errorf("document %s has no id and its name is not numeric", docID)
	}
	return id, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
