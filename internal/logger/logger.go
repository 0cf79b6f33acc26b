package logger

import (
    "fmt"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New builds a JSON zap.Logger at the given level (debug, info, warn, error).
func New(level string) (*zap.Logger, error) {
    cfg := zap.NewProductionConfig()
    cfg.Encoding = "json"
    cfg.EncoderConfig.TimeKey = "ts"
    cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

    if level == "" {
        level = "info"
    }
    if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
        return nil, fmt.Errorf("invalid log level %q: %w", level, err)
    }
    return cfg.Build()
}
