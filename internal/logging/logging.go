// Package logging builds the zap logger used by the demo driver.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	tberrors "github.com/vnykmshr/tokenbucket/pkg/common/errors"
)

// Config selects level and encoding.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is "json" for production encoding or "console" for human-readable output.
	Format string
}

// New builds a logger for config. Console format uses zap's development
// encoder without stack traces on warnings.
func New(config Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		return nil, tberrors.NewValidationError("logging", "level", config.Level, "unknown level").
			WithHint("use debug, info, warn or error")
	}

	var zc zap.Config
	switch config.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, tberrors.NewValidationError("logging", "format", config.Format, "unknown format").
			WithHint("use json or console")
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// Must is like New but panics on error. Intended for process startup.
func Must(config Config) *zap.Logger {
	logger, err := New(config)
	if err != nil {
		panic(err)
	}
	return logger
}
