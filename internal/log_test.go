package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel("trace"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerWritesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromZap(zap.New(core), LogLevelInfo)

	l.Info("loaded %d startups", 3)
	l.Debug("hidden")
	l.With(zap.String("component", "chat")).Warn("quota at %d", 19)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "loaded 3 startups", entries[0].Message)
		assert.Equal(t, "quota at 19", entries[1].Message)
		assert.Equal(t, "chat", entries[1].ContextMap()["component"])
	}
}
