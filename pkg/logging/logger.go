package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

// InitLogging initializes the zap-backed logger
func InitLogging(debug bool) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	zapLogger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	logger = zapLogger.Sugar()
}

// Infof logs info level messages
func Infof(format string, v ...interface{}) {
	if logger != nil {
		logger.Infof(format, v...)
	}
}

// Warnf logs warning level messages
func Warnf(format string, v ...interface{}) {
	if logger != nil {
		logger.Warnf(format, v...)
	}
}

// Errorf logs error level messages
func Errorf(format string, v ...interface{}) {
	if logger != nil {
		logger.Errorf(format, v...)
	}
}

// Sync flushes buffered log entries
func Sync() {
	if logger != nil {
		logger.Sync()
	}
}
