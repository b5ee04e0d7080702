package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Multi creates a logger that writes every entry to all provided loggers'
// cores. serve uses it to write console output to stdout and JSON to the log
// file at the same time.
func Multi(loggers ...*zap.Logger) *zap.Logger {
	cores := make([]zapcore.Core, 0, len(loggers))
	for _, l := range loggers {
		cores = append(cores, l.Core())
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
