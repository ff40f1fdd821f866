package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Init initializes the global logger. Pass debug=true to enable Debug level
// and development-style output.
func Init(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// ロガーが作れない場合は素のロガーで継続する
		l = zap.NewNop()
	}
	log = l
}

// Sync flushes any buffered log entries. Call via defer in main().
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func ensure() *zap.Logger {
	if log == nil {
		Init(false)
	}
	return log
}

func Debug(msg string, fields ...zap.Field) {
	ensure().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	ensure().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	ensure().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	ensure().Error(msg, fields...)
}

// Fatal logs the message and exits the process.
func Fatal(msg string, fields ...zap.Field) {
	ensure().Fatal(msg, fields...)
}
