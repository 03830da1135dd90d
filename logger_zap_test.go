package identity_test

import (
	"testing"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := identity.NewZapLogger(zap.New(core)).With("component", "test")

	logger.Debug("debug message", "id", "acc-1")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "identity", entries[0].LoggerName)
	assert.Equal(t, "acc-1", entries[0].ContextMap()["id"])
	assert.Equal(t, "test", entries[0].ContextMap()["component"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}

func TestZapLogger_NilFallsBack(t *testing.T) {
	logger := identity.NewZapLogger(nil)
	assert.NotPanics(t, func() {
		logger.Info("discarded", "k", "v")
	})
}
