package talk_test

import (
	"context"
	"testing"

	"github.com/aretw0/talkweave/internal/talk"
	"github.com/aretw0/talkweave/pkg/adapters/memory"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id, talkID int, text string, next ...int) domain.DialogueNode {
	return domain.DialogueNode{
		ID:      id,
		Next:    next,
		Text:    text,
		TalkID:  talkID,
		Speaker: domain.Speaker{Kind: domain.RoleNPC, Name: "Katheryne"},
	}
}

// fixture builds:
//
//	talk 100 (init 10) -> 200, 300, 999 (missing)
//	talk 200 (init 20) -> 300
//	talk 300 (init 30)
//	talk 500 (init 50) -> 501, 502 (both init 51)
//	talk 600 (init 9999, missing node)
func fixture(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.NewFromNodes(
		line(10, 100, "Welcome", 11),
		line(11, 100, "to the guild"),
		line(40, 100, "Unrelated idle line", 41),
		line(41, 100, "and its follow-up"),
		line(20, 200, "Second talk"),
		line(30, 300, "Third talk"),
		line(50, 500, "Fourth talk"),
		line(51, 501, "Shared opening"),
	)
	require.NoError(t, err)

	for _, u := range []domain.TalkUnit{
		{ID: 100, InitialNodeID: 10, NextUnitIDs: []int{200, 300, 999}},
		{ID: 200, InitialNodeID: 20, NextUnitIDs: []int{300}},
		{ID: 300, InitialNodeID: 30},
		{ID: 500, InitialNodeID: 50, NextUnitIDs: []int{501, 502}},
		{ID: 501, InitialNodeID: 51},
		{ID: 502, InitialNodeID: 51},
		{ID: 600, InitialNodeID: 9999},
	} {
		require.NoError(t, s.AddTalk(u))
	}
	return s
}

func childIDs(rt *domain.ResolvedTalk) (ids []int, placeholders []bool) {
	for _, c := range rt.Children {
		ids = append(ids, c.Unit.ID)
		placeholders = append(placeholders, c.Placeholder)
	}
	return ids, placeholders
}

func TestExpand_TalkGraph(t *testing.T) {
	store := fixture(t)
	acc := talk.NewAccumulator(store, store)

	rt, err := acc.Expand(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, rt)

	assert.Equal(t, []int{10, 11}, rt.Tree.IDs())

	ids, ph := childIDs(rt)
	assert.Equal(t, []int{200, 300}, ids, "missing talk 999 is dropped")
	assert.Equal(t, []bool{false, true}, ph)

	second := rt.Children[0]
	ids, ph = childIDs(second)
	assert.Equal(t, []int{300}, ids)
	assert.Equal(t, []bool{false}, ph)
	assert.Equal(t, []int{30}, second.Children[0].Tree.IDs())
}

func TestExpand_IsIdempotentWithinRun(t *testing.T) {
	store := fixture(t)
	acc := talk.NewAccumulator(store, store)
	ctx := context.Background()

	first, err := acc.Expand(ctx, 300)
	require.NoError(t, err)
	assert.NotNil(t, first)

	again, err := acc.Expand(ctx, 300)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.True(t, acc.Expanded(300))
}

func TestExpand_NotFound(t *testing.T) {
	store := fixture(t)
	acc := talk.NewAccumulator(store, store)

	_, err := acc.Expand(context.Background(), 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpand_OtherDialogue(t *testing.T) {
	store := fixture(t)
	acc := talk.NewAccumulator(store, store)

	rt, err := acc.Expand(context.Background(), 100)
	require.NoError(t, err)

	require.Len(t, rt.Other, 1)
	assert.Equal(t, []int{40, 41}, rt.Other[0].IDs())
	assert.True(t, acc.Reached(41))
}

func TestExpand_MaxDepth(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()

	rt, err := talk.NewAccumulator(store, store, talk.WithMaxDepth(0)).Expand(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, rt.Children)

	rt, err = talk.NewAccumulator(store, store, talk.WithMaxDepth(1)).Expand(ctx, 100)
	require.NoError(t, err)
	require.Len(t, rt.Children, 2)
	assert.Empty(t, rt.Children[0].Children)
	// 300 is no longer reached through 200, so it expands directly under 100.
	assert.False(t, rt.Children[1].Placeholder)
}

func TestExpand_ConsecutiveDuplicateStart(t *testing.T) {
	store := fixture(t)
	acc := talk.NewAccumulator(store, store)

	rt, err := acc.Expand(context.Background(), 500)
	require.NoError(t, err)

	ids, ph := childIDs(rt)
	assert.Equal(t, []int{501, 502}, ids)
	assert.Equal(t, []bool{false, true}, ph)
	assert.Equal(t, 501, rt.Children[1].SharedWith)
	assert.False(t, acc.Expanded(502), "a repeated opening is not expanded")
}

func TestExpand_RepeatedOpeningKeepsDescendants(t *testing.T) {
	s, err := memory.NewFromNodes(
		line(1, 100, "root", 2),
		line(2, 101, "a", 3),
		line(3, 101, "b"),
		line(9, 103, "grandchild only"),
	)
	require.NoError(t, err)
	for _, u := range []domain.TalkUnit{
		{ID: 100, InitialNodeID: 1, NextUnitIDs: []int{101, 102}},
		{ID: 101, InitialNodeID: 2},
		{ID: 102, InitialNodeID: 2, NextUnitIDs: []int{103}},
		{ID: 103, InitialNodeID: 9},
	} {
		require.NoError(t, s.AddTalk(u))
	}
	acc := talk.NewAccumulator(s, s)
	ctx := context.Background()

	rt, err := acc.Expand(ctx, 100)
	require.NoError(t, err)
	ids, ph := childIDs(rt)
	assert.Equal(t, []int{101, 102}, ids)
	assert.Equal(t, []bool{false, true}, ph)
	assert.False(t, acc.Expanded(103))

	grandchild, err := acc.Expand(ctx, 103)
	require.NoError(t, err)
	require.NotNil(t, grandchild)
	assert.Equal(t, []int{9}, grandchild.Tree.IDs())
}

func TestExpand_MissingInitialNode(t *testing.T) {
	store := fixture(t)
	var drops []string
	hooks := domain.Hooks{
		OnDrop: func(_ context.Context, reason string, _ int) { drops = append(drops, reason) },
	}
	acc := talk.NewAccumulator(store, store, talk.WithHooks(hooks))

	rt, err := acc.Expand(context.Background(), 600)
	require.NoError(t, err)
	require.NotNil(t, rt)
	assert.Empty(t, rt.Tree)
	assert.Equal(t, []string{"missing_dialogue"}, drops)
}

func TestExpand_TopLevelAndHooks(t *testing.T) {
	store := fixture(t)
	var top, placeholders int
	hooks := domain.Hooks{
		OnUnit: func(_ context.Context, e *domain.UnitEvent) {
			if e.TopLevel {
				top++
			}
			if e.Placeholder {
				placeholders++
			}
		},
	}
	acc := talk.NewAccumulator(store, store, talk.WithHooks(hooks), talk.WithParallelForks(4))
	ctx := context.Background()

	_, err := acc.Expand(ctx, 100)
	require.NoError(t, err)
	_, err = acc.Expand(ctx, 500)
	require.NoError(t, err)

	var ids []int
	for _, u := range acc.TopLevel() {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int{100, 500}, ids)
	assert.Equal(t, 2, top)
	assert.Equal(t, 2, placeholders)
}
