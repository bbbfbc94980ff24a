package logging

import (
	"context"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: JSON lines on stdout with ISO8601 timestamps
func New(debug bool) (*zap.Logger, error) {
	return build(debug, "stdout")
}

// NewStderr builds the same logger on stderr, for tools whose stdout is their output
func NewStderr(debug bool) (*zap.Logger, error) {
	return build(debug, "stderr")
}

func build(debug bool, output string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// LarkLogger routes Lark SDK logs into zap
type LarkLogger struct {
	logger *zap.SugaredLogger
}

// NewLarkLogger wraps logger for the Lark SDK
func NewLarkLogger(logger *zap.Logger) *LarkLogger {
	return &LarkLogger{logger: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *LarkLogger) Debug(ctx context.Context, args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *LarkLogger) Info(ctx context.Context, args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *LarkLogger) Warn(ctx context.Context, args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *LarkLogger) Error(ctx context.Context, args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

var _ larkcore.Logger = (*LarkLogger)(nil)

// LarkLevel maps the debug flag to the SDK log level
func LarkLevel(debug bool) larkcore.LogLevel {
	if debug {
		return larkcore.LogLevelDebug
	}
	return larkcore.LogLevelWarn
}

// Truncate shortens s to n runes for log lines
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
