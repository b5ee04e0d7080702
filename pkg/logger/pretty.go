package logger

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"go.uber.org/zap/zapcore"
)

// prettyCore is a zapcore.Core that renders entries with charmbracelet/log.
type prettyCore struct {
	zapcore.LevelEnabler

	out    *log.Logger
	fields []zapcore.Field
}

func newPrettyCore(w io.Writer, level zapcore.LevelEnabler) *prettyCore {
	return &prettyCore{
		LevelEnabler: level,
		out: log.NewWithOptions(w, log.Options{
			Level:           log.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		}),
	}
}

func (c *prettyCore) With(fields []zapcore.Field) zapcore.Core {
	return &prettyCore{
		LevelEnabler: c.LevelEnabler,
		out:          c.out,
		fields:       append(append([]zapcore.Field{}, c.fields...), fields...),
	}
}

func (c *prettyCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *prettyCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		keyvals = append(keyvals, k, enc.Fields[k])
	}

	c.out.Log(charmLevel(ent.Level), ent.Message, keyvals...)
	return nil
}

func (c *prettyCore) Sync() error {
	return nil
}

func charmLevel(l zapcore.Level) log.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return log.DebugLevel
	case l == zapcore.InfoLevel:
		return log.InfoLevel
	case l == zapcore.WarnLevel:
		return log.WarnLevel
	case l == zapcore.ErrorLevel:
		return log.ErrorLevel
	default:
		return log.FatalLevel
	}
}
