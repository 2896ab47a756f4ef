package memory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/talkweave/pkg/adapters/memory"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContractStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.NewFromNodes(tests.ContractNodes...)
	require.NoError(t, err)
	for _, talk := range tests.ContractTalks {
		require.NoError(t, s.AddTalk(talk))
	}
	return s
}

func TestMemoryStore_NodeContract(t *testing.T) {
	tests.NodeStoreContractTest(t, newContractStore(t))
}

func TestMemoryStore_TalkContract(t *testing.T) {
	tests.TalkStoreContractTest(t, newContractStore(t))
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	_, err := memory.NewFromNodes(domain.DialogueNode{ID: 1}, domain.DialogueNode{ID: 1})
	assert.Error(t, err)
}

func TestMemoryStore_OptionalCapabilities(t *testing.T) {
	s := newContractStore(t)
	ctx := context.Background()

	talks, err := s.TalksByInitialNode(ctx, 1)
	require.NoError(t, err)
	require.Len(t, talks, 1)
	assert.Equal(t, 100, talks[0].ID)

	ids, err := s.DialogueIDsByTalk(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids)

	hits, err := s.SearchText(ctx, "WAIT", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, hits)

	hits, err = s.SearchText(ctx, "e", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, hits)
}

func TestLoadYAML(t *testing.T) {
	src := `
dialogues:
  - id: 1
    next: [2]
    speaker: {kind: TALK_ROLE_NPC, name: Paimon}
    text: Hello!
  - id: 2
    speaker: {kind: TALK_ROLE_PLAYER}
    text: Hi.
    show_type: TALK_SHOW_FORCE_SELECT
talks:
  - id: 100
    initial_node_id: 1
    next_unit_ids: [101]
    preconditions:
      - type: QUEST_COND_IS_DAYTIME
        params: ["1"]
voices:
  1:
    - file: vo_paimon_1.ogg
avatars:
  "10000029": Klee
`
	s, err := memory.LoadYAML(strings.NewReader(src))
	require.NoError(t, err)

	ctx := context.Background()
	n, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlayer, n.Speaker.Kind)
	assert.Equal(t, domain.ShowForceSelect, n.ShowType)

	talk, err := s.GetTalk(ctx, 100)
	require.NoError(t, err)
	require.Len(t, talk.Preconditions, 1)
	assert.Equal(t, "QUEST_COND_IS_DAYTIME", talk.Preconditions[0].Type)
	assert.Equal(t, "1", talk.Preconditions[0].Param(0))

	assert.Len(t, s.VoiceItems(1), 1)
	name, ok := s.AvatarName("10000029")
	assert.True(t, ok)
	assert.Equal(t, "Klee", name)
}
