package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := InitWriter(&buf, "storefront", false, "warn")

	logger.Info().Msg("hidden")
	logger.Warn().Str("key", "storefront:cart").Msg("reset")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "storefront", entry["service"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "storefront:cart", entry["key"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "storefront", false, "info")

	SetLevel("error")
	Logger.Warn().Msg("dropped")
	assert.Zero(t, buf.Len())

	SetLevel("debug")
	Logger.Debug().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}
