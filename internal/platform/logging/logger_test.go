package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONIncludesConnectionID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")

	ctx := correlation.WithConnectionID(context.Background(), "conn-1")
	logger.InfoContext(ctx, "Producer attached", "screen_id", "S1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Producer attached", record["msg"])
	assert.Equal(t, "S1", record["screen_id"])
	assert.Equal(t, "conn-1", record["connection_id"])
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text")

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
