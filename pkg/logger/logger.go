package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hr-ledger/config"
)

// NewLogger builds a zap logger from configuration.
// Entry timestamps are written in loc so they line up with ledger days;
// a nil loc keeps the process zone.
func NewLogger(cfg *config.LogConfig, loc *time.Location) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig = encoderConfig(zapCfg.EncoderConfig, cfg.Format, loc)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}

func encoderConfig(enc zapcore.EncoderConfig, format string, loc *time.Location) zapcore.EncoderConfig {
	if format == "console" {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	enc.EncodeTime = civilTimeEncoder(loc)
	return enc
}

// civilTimeEncoder ISO8601 in loc
func civilTimeEncoder(loc *time.Location) zapcore.TimeEncoder {
	return func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		if loc != nil {
			t = t.In(loc)
		}
		zapcore.ISO8601TimeEncoder(t, pae)
	}
}
