package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel       = "info"
	standardErrorSink     = "stderr"
	invalidLogLevelFormat = "invalid log level %q: %w"
)

// NewApplicationLogger constructs a zap logger configured for human-readable
// console output on standard error at the given level. Standard output is
// reserved for protocol traffic and rendered results.
func NewApplicationLogger(level string) (*zap.Logger, error) {
	normalizedLevel := strings.TrimSpace(level)
	if normalizedLevel == "" {
		normalizedLevel = defaultLogLevel
	}
	atomicLevel, levelError := zap.ParseAtomicLevel(normalizedLevel)
	if levelError != nil {
		return nil, fmt.Errorf(invalidLogLevelFormat, level, levelError)
	}

	config := zap.NewProductionConfig()
	config.Level = atomicLevel
	config.Encoding = "console"
	config.OutputPaths = []string{standardErrorSink}
	config.ErrorOutputPaths = []string{standardErrorSink}
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
