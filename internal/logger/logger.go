package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"task-search-backend/internal/config"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Options struct {
	Service string
	Level   zapcore.Level
	// Format is FormatJSON or FormatConsole. Empty picks JSON at warn and
	// above, console below.
	Format string
	// OutputPaths defaults to stderr.
	OutputPaths []string
}

// FromConfig builds the options for a binary from the loaded environment.
func FromConfig(cfg *config.Config, service string) Options {
	return Options{
		Service: service,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}
}

func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if format(opts) == FormatJSON {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		// stack traces only when debugging
		cfg.DisableStacktrace = opts.Level > zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(opts.Level)

	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}
	if opts.Service != "" {
		cfg.InitialFields = map[string]any{"service": opts.Service}
	}

	return cfg.Build()
}

func format(opts Options) string {
	switch strings.ToLower(opts.Format) {
	case FormatJSON:
		return FormatJSON
	case FormatConsole:
		return FormatConsole
	}
	if opts.Level >= zapcore.WarnLevel {
		return FormatJSON
	}
	return FormatConsole
}
