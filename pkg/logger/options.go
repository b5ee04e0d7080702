package logger

import (
	"io"

	"go.uber.org/zap/zapcore"
)

type config struct {
	level   zapcore.Level
	json    bool
	pretty  bool
	writers []io.Writer
}

// Option configures a Logger created with New.
type Option func(*config)

// WithDebug sets the log level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = zapcore.DebugLevel
		} else {
			c.level = zapcore.InfoLevel
		}
	}
}

// WithJSON switches to the JSON encoder, for log files.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithPretty renders console output with charmbracelet/log. Ignored when
// JSON output is enabled.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithWriter adds a destination.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = append(c.writers, w)
	}
}

// WithWriters adds several destinations.
func WithWriters(ws ...io.Writer) Option {
	return func(c *config) {
		c.writers = append(c.writers, ws...)
	}
}
