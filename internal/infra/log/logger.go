package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New собирает zap-логгер: JSON в production, консольный вывод в остальных окружениях.
func New(levelEnv, environment string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel) // default DEBUG

	if levelEnv != "" {
		if err := cfg.Level.UnmarshalText([]byte(levelEnv)); err != nil {
			return nil, fmt.Errorf("bad LOG_LEVEL=%s: %w", levelEnv, err)
		}
	}
	return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func Must(levelEnv, environment string) *zap.Logger {
	l, err := New(levelEnv, environment)
	if err != nil {
		panic(err)
	}
	return l
}
