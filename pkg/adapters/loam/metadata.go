package loam

// Document kinds. A document without a kind is a dialogue line.
const (
	KindLine = "line"
	KindTalk = "talk"
)

// Metadata is the frontmatter of a dialogue document. Line documents carry
// their text as the document body; talk documents ignore the body.
type Metadata struct {
	Kind string `json:"kind" mapstructure:"kind"`
	ID   int    `json:"id" mapstructure:"id"`

	// Line fields
	Next      []int         `json:"next" mapstructure:"next"`
	Role      string        `json:"role" mapstructure:"role"`
	SpeakerID string        `json:"speaker_id" mapstructure:"speaker_id"`
	Name      string        `json:"name" mapstructure:"name"`
	ShowType  string        `json:"show_type" mapstructure:"show_type"`
	TalkID    int           `json:"talk_id" mapstructure:"talk_id"`
	Voices    []VoiceRecord `json:"voices" mapstructure:"voices"`

	// Talk fields
	InitialNodeID int    `json:"initial_node_id" mapstructure:"initial_node_id"`
	NextUnitIDs   []int  `json:"next_unit_ids" mapstructure:"next_unit_ids"`
	QuestID       int    `json:"quest_id" mapstructure:"quest_id"`
	LoadType      string `json:"load_type" mapstructure:"load_type"`
	NpcIDs        []int  `json:"npc_ids" mapstructure:"npc_ids"`

	// Preconditions are decoded leniently: params may be written as numbers.
	Preconditions []any `json:"preconditions" mapstructure:"preconditions"`

	// Avatars maps avatar ids to display names. Any document may carry it.
	Avatars map[string]string `json:"avatars" mapstructure:"avatars"`
}

type VoiceRecord struct {
	File   string `json:"file" mapstructure:"file"`
	Gender string `json:"gender" mapstructure:"gender"`
}
