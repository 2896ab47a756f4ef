package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/talkweave/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Dataset is the on-disk layout of a YAML dataset file.
//
//	dialogues:
//	  - id: 1
//	    next: [2]
//	    speaker: {kind: TALK_ROLE_NPC, name: Paimon}
//	    text: Hello!
//	talks:
//	  - id: 100
//	    initial_node_id: 1
//	voices:
//	  1: [{file: vo_paimon_1.ogg}]
//	avatars:
//	  "10000029": Klee
type Dataset struct {
	Dialogues []domain.DialogueNode      `yaml:"dialogues"`
	Talks     []domain.TalkUnit          `yaml:"talks"`
	Voices    map[int][]domain.VoiceItem `yaml:"voices"`
	Avatars   map[string]string          `yaml:"avatars"`
}

// NewFromDataset builds a store from a decoded dataset.
func NewFromDataset(ds Dataset) (*Store, error) {
	s := NewStore()
	for _, n := range ds.Dialogues {
		if err := s.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, t := range ds.Talks {
		if err := s.AddTalk(t); err != nil {
			return nil, err
		}
	}
	for id, items := range ds.Voices {
		for _, item := range items {
			s.AddVoice(id, item)
		}
	}
	for id, name := range ds.Avatars {
		s.AddAvatar(id, name)
	}
	return s, nil
}

// DecodeYAML decodes a dataset from r without building a store.
func DecodeYAML(r io.Reader) (Dataset, error) {
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		return ds, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return ds, nil
}

// ReadFile decodes a YAML dataset file.
func ReadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return DecodeYAML(f)
}

// LoadYAML decodes a dataset from r.
func LoadYAML(r io.Reader) (*Store, error) {
	ds, err := DecodeYAML(r)
	if err != nil {
		return nil, err
	}
	return NewFromDataset(ds)
}

// LoadFile decodes a YAML dataset file.
func LoadFile(path string) (*Store, error) {
	ds, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFromDataset(ds)
}
