package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests here mutate global logger state and do not run in parallel.

func TestInitJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	InitTo(&buf, "debug", "json")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := New("manager")
	l.Debug().Str("id", "abc").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "manager", line["component"])
	assert.Equal(t, "abc", line["id"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "hello", line["message"])
}

func TestInitLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitTo(&buf, "warn", "json")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := New("risk")
	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitUnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	InitTo(&buf, "loud", "console")

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	l := New("cli")
	l.Info().Msg("console line")
	assert.Contains(t, buf.String(), "console line")
}
