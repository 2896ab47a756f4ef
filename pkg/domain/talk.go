package domain

// LoadTypeDefault is the load type most talks carry; it is not reported.
const LoadTypeDefault = "TALK_DEFAULT"

// Condition is a precondition gating a talk unit (e.g. friendship level).
type Condition struct {
	Type   string   `json:"type" yaml:"type" mapstructure:"type"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// Param returns the i-th parameter or an empty string.
func (c Condition) Param(i int) string {
	if i < 0 || i >= len(c.Params) {
		return ""
	}
	return c.Params[i]
}

// TalkUnit is a conversational unit owning an initial dialogue node and
// linking to follow-up units.
type TalkUnit struct {
	ID            int         `json:"id" yaml:"id"`
	InitialNodeID int         `json:"initial_node_id,omitempty" yaml:"initial_node_id,omitempty"`
	NextUnitIDs   []int       `json:"next_unit_ids,omitempty" yaml:"next_unit_ids,omitempty"`
	QuestID       int         `json:"quest_id,omitempty" yaml:"quest_id,omitempty"`
	LoadType      string      `json:"load_type,omitempty" yaml:"load_type,omitempty"`
	NpcIDs        []int       `json:"npc_ids,omitempty" yaml:"npc_ids,omitempty"`
	Preconditions []Condition `json:"preconditions,omitempty" yaml:"preconditions,omitempty"`
}

// ResolvedTalk is a talk unit expanded together with its dialogue tree and
// its follow-up units.
type ResolvedTalk struct {
	Unit TalkUnit `json:"unit"`
	Tree Branch   `json:"tree"`

	// Other holds dialogue owned by the unit but not reachable from its
	// initial node.
	Other []Branch `json:"other,omitempty"`

	// Children are in declared next-unit order. A child with Placeholder set
	// only carries Unit.ID: it was expanded elsewhere in the same run.
	Children []*ResolvedTalk `json:"children,omitempty"`

	Placeholder bool `json:"placeholder,omitempty"`

	// SharedWith is the sibling unit whose section shows this placeholder's
	// dialogue, when both open on the same node.
	SharedWith int `json:"shared_with,omitempty"`
}
