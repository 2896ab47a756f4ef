package tests

import (
	"context"
	"testing"

	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractNodes is the dataset every store must be seeded with before running
// NodeStoreContractTest:
//
//	1 -> 2 -> 3, 2 -> 4, 4 -> 3, 5 (no text) -> 3
var ContractNodes = []domain.DialogueNode{
	{ID: 1, Next: []int{2}, Speaker: domain.Speaker{Kind: domain.RoleNPC, Name: "Paimon"}, Text: "Hello!", TalkID: 100},
	{ID: 2, Next: []int{3, 4}, Speaker: domain.Speaker{Kind: domain.RoleNPC, Name: "Paimon"}, Text: "Where to?", TalkID: 100},
	{ID: 3, Speaker: domain.Speaker{Kind: domain.RoleNPC, Name: "Paimon"}, Text: "Let's go.", TalkID: 100},
	{ID: 4, Next: []int{3}, Speaker: domain.Speaker{Kind: domain.RolePlayer}, Text: "Wait.", TalkID: 100},
	{ID: 5, Next: []int{3}, Speaker: domain.Speaker{Kind: domain.RoleNPC}},
}

// ContractTalks is the talk dataset used by TalkStoreContractTest.
var ContractTalks = []domain.TalkUnit{
	{ID: 100, InitialNodeID: 1, NextUnitIDs: []int{101}, QuestID: 7},
	{ID: 101, InitialNodeID: 3},
}

// NodeStoreContractTest verifies that a store seeded with ContractNodes
// complies with ports.NodeStore.
func NodeStoreContractTest(t *testing.T, store ports.NodeStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		node, err := store.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, node.ID)
		assert.Equal(t, []int{3, 4}, node.Next)
		assert.Equal(t, "Where to?", node.Text)
		assert.Equal(t, domain.RoleNPC, node.Speaker.Kind)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("GetMany_PreservesOrder", func(t *testing.T) {
		nodes, err := store.GetMany(ctx, []int{4, 1, 3})
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		assert.Equal(t, 4, nodes[0].ID)
		assert.Equal(t, 1, nodes[1].ID)
		assert.Equal(t, 3, nodes[2].ID)
	})

	t.Run("GetMany_DropsMissingAndEmpty", func(t *testing.T) {
		nodes, err := store.GetMany(ctx, []int{999, 5, 2})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, 2, nodes[0].ID)
	})

	t.Run("PredecessorsOf", func(t *testing.T) {
		prev, err := store.PredecessorsOf(ctx, 3)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{2, 4, 5}, prev)

		roots, err := store.PredecessorsOf(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, roots)
	})
}

// TalkStoreContractTest verifies that a store seeded with ContractTalks
// complies with ports.TalkStore.
func TalkStoreContractTest(t *testing.T, store ports.TalkStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetTalk", func(t *testing.T) {
		unit, err := store.GetTalk(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, unit.InitialNodeID)
		assert.Equal(t, []int{101}, unit.NextUnitIDs)
		assert.Equal(t, 7, unit.QuestID)
	})

	t.Run("GetTalk_NotFound", func(t *testing.T) {
		_, err := store.GetTalk(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
