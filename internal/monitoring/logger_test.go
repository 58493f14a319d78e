package monitoring

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRestoredLogger(t *testing.T) {
	t.Helper()
	original := *Logger()
	t.Cleanup(func() { SetLogger(original) })
}

func TestInit_LevelFiltersDebug(t *testing.T) {
	withRestoredLogger(t)

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "info", Out: &buf}))

	Logger().Debug().Msg("hidden")
	Logger().Info().Str("run", "a").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "a", entry["run"])
	assert.Equal(t, "info", entry["level"])
}

func TestInit_InvalidLevel(t *testing.T) {
	withRestoredLogger(t)

	err := Init(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestInit_ConsoleOutput(t *testing.T) {
	withRestoredLogger(t)

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "DEBUG", Console: true, Out: &buf}))
	Logger().Debug().Msg("console line")

	assert.Contains(t, buf.String(), "console line")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestLogf_UsesPackageLogger(t *testing.T) {
	withRestoredLogger(t)

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	Logf("applied %d migrations", 2)

	assert.Contains(t, buf.String(), "applied 2 migrations")
}

func TestSetLogger_Nop(t *testing.T) {
	withRestoredLogger(t)

	SetLogger(zerolog.Nop())
	assert.NotPanics(t, func() { Logf("muted %s", "message") })
}

func TestDefaultLogger_InfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, zerolog.InfoLevel)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l.Debug().Msg("sweep started")
	assert.Empty(t, buf.String(), "debug output before Init")

	mu.RLock()
	level := logger.GetLevel()
	mu.RUnlock()
	assert.LessOrEqual(t, zerolog.InfoLevel, level)
}
