package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/talkweave/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logging.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWriter(&buf, slog.LevelInfo, false)

	log.Info("lookup failed", "error", errors.New("boom"))
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=")
	assert.NotContains(t, out, "hidden")
}

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logging.NewWriter(&buf, slog.LevelDebug, true).Debug("walk", "node_id", 7)
	assert.Contains(t, buf.String(), `"node_id":7`)
}
