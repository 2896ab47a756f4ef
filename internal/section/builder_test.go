package section_test

import (
	"context"
	"testing"

	"github.com/aretw0/talkweave/internal/section"
	"github.com/aretw0/talkweave/internal/talk"
	"github.com/aretw0/talkweave/internal/wikitext"
	"github.com/aretw0/talkweave/pkg/adapters/memory"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func npc(id, talkID int, text string, next ...int) domain.DialogueNode {
	return domain.DialogueNode{ID: id, Next: next, Text: text, TalkID: talkID, Speaker: domain.Speaker{Kind: domain.RoleNPC, Name: "Ekaterina"}}
}

func values(p domain.MetaProp) []string {
	var out []string
	for _, v := range p.Values {
		out = append(out, v.Value)
	}
	return out
}

func TestTalk_MetadataAndChildren(t *testing.T) {
	store, err := memory.NewFromNodes(
		npc(1, 10, "Hello", 2),
		npc(2, 10, "Goodbye"),
		npc(3, 11, "Next part"),
	)
	require.NoError(t, err)
	require.NoError(t, store.AddTalk(domain.TalkUnit{
		ID: 10, InitialNodeID: 1, NextUnitIDs: []int{11, 12}, QuestID: 7,
		LoadType: "TALK_BLOSSOM", NpcIDs: []int{900},
		Preconditions: []domain.Condition{
			{Type: "QUEST_COND_AVATAR_FETTER_GT", Params: []string{"10000002", "5"}},
			{Type: "QUEST_COND_IS_DAYTIME", Params: []string{"0"}},
			{Type: "QUEST_COND_STATE_EQUAL", Params: []string{"70101", "2"}},
		},
	}))
	require.NoError(t, store.AddTalk(domain.TalkUnit{ID: 11, InitialNodeID: 3, NextUnitIDs: []int{12}}))
	require.NoError(t, store.AddTalk(domain.TalkUnit{ID: 12}))
	store.AddAvatar("10000002", "Kamisato Ayaka")

	acc := talk.NewAccumulator(store, store)
	rt, err := acc.Expand(context.Background(), 10)
	require.NoError(t, err)

	b := section.NewBuilder(wikitext.NewRenderer(), section.WithAvatars(store))
	s := b.Talk(rt)

	assert.Equal(t, "Talk_10", s.ID)
	assert.Equal(t, "Talk", s.Title)
	assert.Equal(t, ":'''Ekaterina:''' Hello\n:'''Ekaterina:''' Goodbye", s.Body)

	var labels []string
	for _, p := range s.Metadata {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{
		"Talk ID", "First Dialogue ID", "Load Type", "Quest ID", "NPC ID", "Next Talk IDs",
		"Friendship for", "Nighttime Only", "QUEST_COND_STATE_EQUAL",
	}, labels)

	quest, ok := s.Meta("Quest ID")
	require.True(t, ok)
	assert.Equal(t, section.QuestLink, quest.Link)
	next, _ := s.Meta("Next Talk IDs")
	assert.Equal(t, []string{"11", "12"}, values(next))
	friend, _ := s.Meta("Friendship for")
	assert.Equal(t, []string{"Kamisato Ayaka", "is greater than", "5"}, values(friend))
	assert.True(t, friend.Values[0].Bold)
	raw, _ := s.Meta("QUEST_COND_STATE_EQUAL")
	assert.Equal(t, []string{"70101", "2"}, values(raw))

	// 11 expands 12 first, so 12 under 10 is a placeholder.
	require.Len(t, s.Children, 2)
	assert.Equal(t, "Talk_11", s.Children[0].ID)
	assert.Equal(t, "Next Talk", s.Children[0].Title)
	assert.Equal(t, section.NextTalkHelp, s.Children[0].HelpText)

	ph := s.Children[1]
	require.NotNil(t, ph.Placeholder)
	assert.Equal(t, "Talk_12", ph.Placeholder.TargetID)
	assert.Equal(t, section.PlaceholderMessage, ph.Placeholder.Message)
	assert.Empty(t, ph.ID)
}

func TestTalk_OtherDialogue(t *testing.T) {
	store, err := memory.NewFromNodes(npc(1, 10, "Main"), npc(5, 10, "Idle"))
	require.NoError(t, err)
	require.NoError(t, store.AddTalk(domain.TalkUnit{ID: 10, InitialNodeID: 1}))

	rt, err := talk.NewAccumulator(store, store).Expand(context.Background(), 10)
	require.NoError(t, err)

	s := section.NewBuilder(wikitext.NewRenderer()).Talk(rt)
	require.Len(t, s.Children, 1)
	other := s.Children[0]
	assert.Equal(t, "OtherDialogue_5", other.ID)
	assert.Equal(t, "Other Dialogue", other.Title)
	assert.Equal(t, ":'''Ekaterina:''' Idle", other.Body)
	first, ok := other.Meta("First Dialogue ID")
	require.True(t, ok)
	assert.Equal(t, []string{"5"}, values(first))
}

func TestTalk_RepeatedOpeningPointsAtSibling(t *testing.T) {
	rt := &domain.ResolvedTalk{
		Unit: domain.TalkUnit{ID: 20},
		Children: []*domain.ResolvedTalk{
			{Unit: domain.TalkUnit{ID: 21, InitialNodeID: 5}},
			{Unit: domain.TalkUnit{ID: 22}, Placeholder: true, SharedWith: 21},
		},
	}
	s := section.NewBuilder(wikitext.NewRenderer()).Talk(rt)

	require.Len(t, s.Children, 2)
	ph := s.Children[1]
	require.NotNil(t, ph.Placeholder)
	assert.Equal(t, "Talk_21", ph.Placeholder.TargetID)
	id, _ := ph.Meta("Talk ID")
	assert.Equal(t, []string{"22"}, values(id))
}

func TestDialogue_PlainSection(t *testing.T) {
	tree := domain.Branch{{Node: npc(4, 0, "Standalone")}}
	s := section.NewBuilder(wikitext.NewRenderer()).Dialogue(tree, 0)

	assert.Equal(t, "Dialogue_4", s.ID)
	assert.Equal(t, "Dialogue", s.Title)
	assert.Equal(t, ":'''Ekaterina:''' Standalone", s.Body)
	assert.Equal(t, "{{Dialogue Start}}\n:'''Ekaterina:''' Standalone\n{{Dialogue End}}", s.String(true))
}

func TestDialogue_RecordsMatchedID(t *testing.T) {
	tree := domain.Branch{{Node: npc(4, 0, "Standalone")}}
	s := section.NewBuilder(wikitext.NewRenderer()).Dialogue(tree, 7)

	first, ok := s.Meta("First Dialogue ID")
	require.True(t, ok)
	assert.Equal(t, []string{"4"}, values(first))
	match, ok := s.Meta("First Match Dialogue ID")
	require.True(t, ok)
	assert.Equal(t, []string{"7"}, values(match))
	assert.Equal(t, section.DialogueLink, match.Link)

	plain := section.NewBuilder(wikitext.NewRenderer()).Dialogue(tree, 0)
	_, ok = plain.Meta("First Match Dialogue ID")
	assert.False(t, ok)
}

func TestRules_Apply(t *testing.T) {
	rules := section.DefaultRules()

	day := rules.Apply(domain.Condition{Type: "QUEST_COND_IS_DAYTIME", Params: []string{"1"}}, nil)
	assert.Equal(t, "Daytime Only", day.Label)
	assert.Empty(t, day.Values)

	male := rules.Apply(domain.Condition{Type: "QUEST_COND_PLAYER_CHOOSE_MALE", Params: []string{"0"}}, nil)
	assert.Equal(t, "Player chose female traveler", male.Label)

	team := rules.Apply(domain.Condition{Type: "QUEST_COND_PLAYER_TEAM_CONTAINS_AVATAR", Params: []string{"10000046"}}, nil)
	assert.Equal(t, "Player team contains avatar", team.Label)
	assert.Equal(t, []string{"10000046"}, values(team), "unknown avatar falls back to its id")
}

func TestWithRules_ReplacesLabels(t *testing.T) {
	rules := section.Rules{
		"QUEST_COND_IS_DAYTIME": func(domain.Condition, ports.AvatarDirectory) domain.MetaProp {
			return domain.MetaProp{Label: "Time gated"}
		},
	}
	unit := domain.TalkUnit{ID: 3, Preconditions: []domain.Condition{{Type: "QUEST_COND_IS_DAYTIME", Params: []string{"1"}}}}

	s := section.NewBuilder(wikitext.NewRenderer(), section.WithRules(rules)).Talk(&domain.ResolvedTalk{Unit: unit})
	_, ok := s.Meta("Time gated")
	assert.True(t, ok)
	_, ok = s.Meta("Daytime Only")
	assert.False(t, ok)
}
