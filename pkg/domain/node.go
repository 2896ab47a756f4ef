package domain

// RoleKind identifies who speaks a dialogue line.
type RoleKind string

const (
	RoleNPC    RoleKind = "TALK_ROLE_NPC"
	RolePlayer RoleKind = "TALK_ROLE_PLAYER"
	RoleGadget RoleKind = "TALK_ROLE_GADGET"

	// RoleMateAvatar is the player's sibling companion.
	RoleMateAvatar RoleKind = "TALK_ROLE_MATE_AVATAR"

	// Narrator / transition kinds. Rendered as black screen blocks.
	RoleBlackScreen                    RoleKind = "TALK_ROLE_BLACK_SCREEN"
	RoleConsequentBlackScreen          RoleKind = "TALK_ROLE_CONSEQUENT_BLACK_SCREEN"
	RoleNeedClickBlackScreen           RoleKind = "TALK_ROLE_NEED_CLICK_BLACK_SCREEN"
	RoleConsequentNeedClickBlackScreen RoleKind = "TALK_ROLE_CONSEQUENT_NEED_CLICK_BLACK_SCREEN"
)

// ShowType modifies how a line is presented in game.
type ShowType string

// ShowForceSelect marks a player line that is always offered as a choice.
const ShowForceSelect ShowType = "TALK_SHOW_FORCE_SELECT"

// Speaker describes the role behind a dialogue line.
type Speaker struct {
	Kind RoleKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	ID   string   `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Name string   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
}

// IsPlayer reports whether the line is authored by the player.
func (s Speaker) IsPlayer() bool {
	return s.Kind == RolePlayer
}

// IsBlackScreen reports whether the line is a narrator/transition block.
func (s Speaker) IsBlackScreen() bool {
	switch s.Kind {
	case RoleBlackScreen, RoleConsequentBlackScreen, RoleNeedClickBlackScreen, RoleConsequentNeedClickBlackScreen:
		return true
	}
	return false
}

// DialogueNode is a single line of dialogue as stored in the node store.
// The engine never mutates a node; derived structure lives in Branch.
type DialogueNode struct {
	ID       int      `json:"id" yaml:"id"`
	Next     []int    `json:"next,omitempty" yaml:"next,omitempty"`
	Speaker  Speaker  `json:"speaker" yaml:"speaker"`
	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`
	ShowType ShowType `json:"show_type,omitempty" yaml:"show_type,omitempty"`

	// TalkID is the talk unit that owns this node (0 when unknown).
	TalkID int `json:"talk_id,omitempty" yaml:"talk_id,omitempty"`
}

// HasContent reports whether the node carries a line worth emitting.
func (n DialogueNode) HasContent() bool {
	return n.Text != ""
}

// LeadsTo reports whether id is one of the node's successors.
func (n DialogueNode) LeadsTo(id int) bool {
	for _, next := range n.Next {
		if next == id {
			return true
		}
	}
	return false
}

// VoiceItem is one recorded audio file for a dialogue line.
type VoiceItem struct {
	File   string `json:"file" yaml:"file"`
	Gender string `json:"gender,omitempty" yaml:"gender,omitempty"` // "M", "F" or empty
}
