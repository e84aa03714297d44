package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.Logger

// Init builds the global logger. Development mode gets colored console
// output, production mode gets JSON.
func Init(environment, level string) error {
	var cfg zap.Config

	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if l, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(l)
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	globalLogger = built
	zap.ReplaceGlobals(built)
	log.SetOutput(zap.NewStdLog(built).Writer())
	return nil
}

// Get returns the global logger, or a no-op logger if Init was never called
// (keeps tests quiet without extra setup).
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Sync flushes any buffered log entries.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
