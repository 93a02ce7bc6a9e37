package logger

import (
	"log"

	"github.com/justsurfingit/job-trends-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger in development and a JSON logger otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zcfg.Build()
	}
	return zap.NewProduction()
}

// StdLog adapts l for libraries that only accept a *log.Logger or a Printf writer.
func StdLog(l *zap.Logger, level zapcore.Level) *log.Logger {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		return zap.NewStdLog(l)
	}
	return std
}
