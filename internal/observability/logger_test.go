package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:       "debug",
		Format:      "json",
		Output:      &buf,
		ServiceName: "pdf-assistant",
	})

	logger.WithSession("abc").Info().Str("language", "ar").Msg("document ingested")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pdf-assistant", line["service"])
	assert.Equal(t, "abc", line["session_id"])
	assert.Equal(t, "ar", line["language"])
	assert.Equal(t, "document ingested", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.WithContext(ctx).Info().Msg("handled")

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("nonsense"))
}
