// Package logging builds component-scoped zap loggers. Configuration mode
// (development vs. production) follows the same APP_ENV convention the
// teacher's logger package uses, with the env var renamed to the core's own
// namespace.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap logger tagged with component=name.
func New(component string) *zap.Logger {
	base, err := build()
	if err != nil {
		// A logger that fails to build is a packaging defect, not a
		// runtime condition callers can recover from.
		base = zap.NewNop()
	}
	return base.With(zap.String("component", component))
}

func build() (*zap.Logger, error) {
	switch os.Getenv("ROSTER_LOG_LEVEL") {
	case "debug":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	default:
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}
}
