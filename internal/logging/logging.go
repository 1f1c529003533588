package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Output goes to stderr so command output on
// stdout stays machine readable.
func New(level string, development bool) (*zap.Logger, error) {
	parsed := zapcore.WarnLevel
	if trimmed := strings.TrimSpace(level); trimmed != "" {
		var err error
		parsed, err = zapcore.ParseLevel(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
