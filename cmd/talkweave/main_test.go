package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = `
dialogues:
  - id: 1
    next: [2, 3]
    speaker: {kind: TALK_ROLE_NPC, name: Paimon}
    text: Where to?
    talk_id: 100
  - id: 2
    next: [4]
    speaker: {kind: TALK_ROLE_PLAYER}
    text: Mondstadt.
    talk_id: 100
  - id: 3
    next: [4]
    speaker: {kind: TALK_ROLE_PLAYER}
    text: Liyue.
    talk_id: 100
  - id: 4
    speaker: {kind: TALK_ROLE_NPC, name: Paimon}
    text: Let's go!
    talk_id: 100
talks:
  - id: 100
    initial_node_id: 1
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialogue.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--data", path, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTalkCommand(t *testing.T) {
	out, err := execute(t, "talk", "100", "--wrap")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{{Dialogue Start}}"))
	assert.Contains(t, out, "'''Paimon:''' Where to?")
	assert.Contains(t, out, "{{DIcon}} Liyue.")
}

func TestDialogueCommand_JSON(t *testing.T) {
	out, err := execute(t, "dialogue", "4", "--json")
	require.NoError(t, err)

	var res struct {
		Sections []struct {
			ID string `json:"id"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "Talk_100", res.Sections[0].ID)
}

func TestTraceAndGraphCommands(t *testing.T) {
	out, err := execute(t, "trace", "4")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = execute(t, "graph", "1", "--highlight", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "n1 --> n2")
	assert.Contains(t, out, "class n4 current;")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Equal(t, "Dataset is valid: 4 dialogue lines, 1 talks.\n", out)
}

func TestCommandErrors(t *testing.T) {
	_, err := execute(t, "talk", "abc")
	assert.Error(t, err)

	_, err = execute(t, "talk", "999")
	assert.Error(t, err)

	_, err = execute(t, "search", "Mondstadt", "--format", "xml")
	assert.Error(t, err)
}
