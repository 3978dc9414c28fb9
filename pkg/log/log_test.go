package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLevels(t *testing.T) {
	Setup("debug", "text")
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	Setup("error", "json")
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelError))

	// Unknown levels fall back to info.
	Setup("verbose", "text")
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
}

func TestWithModule(t *testing.T) {
	Setup("info", "text")

	logger := WithModule("executor")
	assert.NotNil(t, logger)
}
