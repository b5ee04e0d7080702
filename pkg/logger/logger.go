// Package logger provides opinionated logging capabilities for dossier
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(debug bool) *zap.Logger {
	return New(WithDebug(debug))
}

func NewLoggerWithWriters(debug bool, writers ...io.Writer) *zap.Logger {
	return New(WithDebug(debug), WithWriters(writers...))
}

// New builds a logger. Defaults: info level, coloured console output on
// stdout.
func New(opts ...Option) *zap.Logger {
	c := &config{level: zap.InfoLevel}
	for _, opt := range opts {
		opt(c)
	}

	return zap.New(c.core(), zap.AddCaller())
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

func (c *config) core() zapcore.Core {
	writers := c.writers
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	if c.pretty && !c.json {
		return newPrettyCore(io.MultiWriter(writers...), c.level)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if c.json {
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	return zapcore.NewCore(
		encoder,
		zapcore.NewMultiWriteSyncer(syncers...),
		c.level,
	)
}
