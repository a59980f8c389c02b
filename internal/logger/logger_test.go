package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New("debug")
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestNewWithWriter_UnknownLevelIsInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "chatty")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Info().Msg("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestWithRun(t *testing.T) {
	buf := &bytes.Buffer{}
	log, id := WithRun(NewWithWriter(buf, "info"))
	require.NotEmpty(t, id)

	log.Info().Msg("hello")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, id, entry["run_id"])
}
