package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLarkLogger_ForwardsLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLarkLogger(zap.New(core))
	ctx := context.Background()

	l.Debug(ctx, "a", 1)
	l.Info(ctx, "b")
	l.Warn(ctx, "c")
	l.Error(ctx, "d")

	entries := logs.AllUntimed()
	assert.Len(t, entries, 4)
	assert.Equal(t, "a1", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "жж...", Truncate("жжжж", 2))
}

func TestLarkLevel(t *testing.T) {
	assert.NotEqual(t, LarkLevel(true), LarkLevel(false))
}
