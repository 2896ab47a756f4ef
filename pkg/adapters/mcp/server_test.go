package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/talkweave"
	"github.com/aretw0/talkweave/pkg/adapters/memory"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports/tests"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	store, err := memory.NewFromNodes(tests.ContractNodes...)
	require.NoError(t, err)
	for _, u := range tests.ContractTalks {
		require.NoError(t, store.AddTalk(u))
	}
	return NewServer(talkweave.New(store, store))
}

func TestRegisteredTools(t *testing.T) {
	s := newServer(t)
	tools := s.MCPServer().ListTools()
	for _, name := range []string{"generate_talk", "generate_dialogue", "search_dialogue", "trace_roots"} {
		assert.Contains(t, tools, name)
	}
}

func TestGenerateTalk(t *testing.T) {
	s := newServer(t)
	// JSON numbers are decoded as float64.
	args := map[string]interface{}{"ids": []interface{}{float64(100), float64(999)}, "wrap": true}

	resp, err := s.handleGenerateTalk(context.Background(), mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Sections)
	assert.Equal(t, []int{999}, resp.Missing)
	assert.Contains(t, resp.Wikitext, "{{Dialogue Start}}")
	assert.Contains(t, resp.Wikitext, "Hello!")
}

func TestGenerateDialogue_NotFound(t *testing.T) {
	s := newServer(t)
	_, err := s.handleGenerateDialogue(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"ids": []interface{}{float64(999)}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerate_RejectsBadArgs(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, err := s.handleGenerateTalk(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)

	_, err = s.handleGenerateDialogue(ctx, mcp.CallToolRequest{}, map[string]interface{}{"ids": "abc"})
	assert.Error(t, err)
}

func TestSearchDialogue(t *testing.T) {
	s := newServer(t)
	resp, err := s.handleSearch(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"query": "Where to"})
	require.NoError(t, err)
	assert.Contains(t, resp.Wikitext, "Where to?")
}

func TestTraceRoots(t *testing.T) {
	s := newServer(t)
	resp, err := s.handleTraceRoots(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"id": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, RootsResponse{ID: 2, Roots: []int{1}}, resp)

	_, err = s.handleTraceRoots(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"id": fmt.Sprint(999)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
