// Package validator reports broken references in a dialogue dataset.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/talkweave/pkg/adapters/memory"
)

// ValidateDataset checks for dangling dialogue links, talk units pointing
// at missing dialogue or talks, and voice files of unknown lines.
// Generation tolerates all of these; the report helps fix the dataset.
func ValidateDataset(ds memory.Dataset) error {
	nodes := make(map[int]bool, len(ds.Dialogues))
	for _, n := range ds.Dialogues {
		nodes[n.ID] = true
	}
	talks := make(map[int]bool, len(ds.Talks))
	for _, t := range ds.Talks {
		talks[t.ID] = true
	}

	var errors []string

	for _, n := range ds.Dialogues {
		for _, next := range n.Next {
			if !nodes[next] {
				errors = append(errors, fmt.Sprintf("dialogue %d: missing next dialogue %d", n.ID, next))
			}
		}
		if n.TalkID != 0 && !talks[n.TalkID] {
			errors = append(errors, fmt.Sprintf("dialogue %d: unknown talk %d", n.ID, n.TalkID))
		}
	}

	for _, t := range ds.Talks {
		if t.InitialNodeID != 0 && !nodes[t.InitialNodeID] {
			errors = append(errors, fmt.Sprintf("talk %d: missing initial dialogue %d", t.ID, t.InitialNodeID))
		}
		for _, next := range t.NextUnitIDs {
			if !talks[next] {
				errors = append(errors, fmt.Sprintf("talk %d: missing next talk %d", t.ID, next))
			}
		}
	}

	voiced := make([]int, 0, len(ds.Voices))
	for id := range ds.Voices {
		voiced = append(voiced, id)
	}
	sort.Ints(voiced)
	for _, id := range voiced {
		if !nodes[id] {
			errors = append(errors, fmt.Sprintf("voices: unknown dialogue %d", id))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
