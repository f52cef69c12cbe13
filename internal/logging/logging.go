// Package logging constructs the simulator's go.uber.org/zap logger from a
// level name rather than hand-rolling a stdlib log.Logger wrapper.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style zap.Logger at the given level name
// ("debug", "info", "warn", "error"; unrecognized values fall back to
// info). Callers in cmd/simulator hold the returned logger for the
// process lifetime and Sync it on shutdown.
func New(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
