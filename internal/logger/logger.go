package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Init configures the global logger. Call once at startup before any other
// logger function.
func Init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	l, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	log = l
}

func ensure() *zap.Logger {
	if log == nil {
		Init()
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

func Fatal(msg string, fields ...zap.Field) {
	ensure().Fatal(msg, fields...)
}

func Infof(template string, args ...interface{}) {
	ensure().Sugar().Infof(template, args...)
}

func Errorf(template string, args ...interface{}) {
	ensure().Sugar().Errorf(template, args...)
}
