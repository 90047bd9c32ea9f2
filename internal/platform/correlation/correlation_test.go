package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithConnectionID_Roundtrip(t *testing.T) {
	ctx := WithConnectionID(context.Background(), "0f5c2a2e")
	id, ok := ConnectionID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "0f5c2a2e", id)
}

func TestConnectionID_Missing(t *testing.T) {
	id, ok := ConnectionID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestConnectionID_EmptyString(t *testing.T) {
	ctx := WithConnectionID(context.Background(), "")
	_, ok := ConnectionID(ctx)
	assert.False(t, ok)
}

func TestHandler_AddsConnectionID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	logger.InfoContext(WithConnectionID(context.Background(), "abc"), "hello")
	assert.Contains(t, buf.String(), "connection_id=abc")
}

func TestHandler_NoIDNoAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "hello")
	assert.NotContains(t, buf.String(), "connection_id")
}

func TestHandler_WithAttrsKeepsWrapping(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil))).With("screen_id", "S1")

	logger.InfoContext(WithConnectionID(context.Background(), "abc"), "hello")
	assert.Contains(t, buf.String(), "screen_id=S1")
	assert.Contains(t, buf.String(), "connection_id=abc")
}
