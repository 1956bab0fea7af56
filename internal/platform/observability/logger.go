// Package observability wires zap logging and OpenTelemetry tracing into
// the HTTP stack and the command-line tools.
package observability

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/requestctx"
)

const defaultLogLevel = "info"

// LoggerOption customises NewLogger.
type LoggerOption func(*zap.Config)

// WithOutput sends log lines to the given zap sink ("stdout", "stderr", a path).
func WithOutput(paths ...string) LoggerOption {
	return func(cfg *zap.Config) {
		if len(paths) > 0 {
			cfg.OutputPaths = paths
		}
	}
}

// WithLevel overrides LOG_LEVEL. Invalid values are ignored.
func WithLevel(level string) LoggerOption {
	return func(cfg *zap.Config) {
		level = strings.ToLower(strings.TrimSpace(level))
		if level == "" {
			return
		}
		_ = cfg.Level.UnmarshalText([]byte(level))
	}
}

// WithFields attaches fields to every entry.
func WithFields(fields map[string]any) LoggerOption {
	return func(cfg *zap.Config) {
		if cfg.InitialFields == nil {
			cfg.InitialFields = map[string]any{}
		}
		for k, v := range fields {
			cfg.InitialFields[k] = v
		}
	}
}

// NewLogger builds the JSON logger used by every binary. The key names
// match what Cloud Logging parses (severity, message, timestamp).
func NewLogger(opts ...LoggerOption) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.Build()
}

// WithLogger injects the logger into the provided context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return requestctx.WithLogger(ctx, logger)
}

// FromContext retrieves the logger from context, defaulting to a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	return requestctx.Logger(ctx)
}
