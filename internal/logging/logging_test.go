package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/opencode-ai/netforge/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "auto"}, &buf, false)

	logger.Debug().Msg("hidden")
	logger.Info().Str("node_id", "n1").Msg("node added")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "node added", entry["message"])
	assert.Equal(t, "n1", entry["node_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "debug", Format: "console"}, &buf, false)

	logger.Debug().Msg("shown")

	assert.Contains(t, buf.String(), "shown")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
