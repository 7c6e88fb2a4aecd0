// Package logging builds the shared zap logger for Groupsight commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a logger for the given level and format.
// Level is one of debug/info/warn/error; format is json or text.
// The returned logger is handed to every component that emits diagnostics,
// including the rule engine's warning channel.
func New(level, format string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var config zap.Config
	switch format {
	case "json":
		config = zap.NewProductionConfig()
	case "text":
		config = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or text)", format)
	}

	config.Level = zap.NewAtomicLevelAt(parsed)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
