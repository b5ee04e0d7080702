package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes console output with fields", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("hello", zap.String("key", "value"))

			output := buf.String()
			Expect(output).To(ContainSubstring("hello"))
			Expect(output).To(ContainSubstring("value"))
		})

		It("respects debug level", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("debug msg")

			Expect(buf.String()).To(ContainSubstring("debug msg"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			l := logger.NewLoggerWithWriters(false, &buf)
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("creates a JSON logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("structured", zap.Int("count", 42))

			var parsed map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &parsed)).To(Succeed())
			Expect(parsed["msg"]).To(Equal("structured"))
			Expect(parsed["count"]).To(BeNumerically("==", 42))
			Expect(parsed["level"]).To(Equal("info"))
		})

		It("supports multiple writers", func() {
			var buf1, buf2 bytes.Buffer
			l := logger.NewLoggerWithWriters(false, &buf1, &buf2)
			l.Info("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})
	})

	Describe("WithPretty", func() {
		It("renders the message and fields", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.With(zap.String("storage", "json")).Info("pretty output", zap.Int("people", 2))

			output := buf.String()
			Expect(output).To(ContainSubstring("pretty output"))
			Expect(output).To(ContainSubstring("storage=json"))
			Expect(output).To(ContainSubstring("people=2"))
		})

		It("respects the level", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("is ignored for JSON output", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true))
			l.Info("structured")

			var parsed map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &parsed)).To(Succeed())
			Expect(parsed["msg"]).To(Equal("structured"))
		})
	})

	Describe("Multi", func() {
		It("fans out to every logger with its own encoding and level", func() {
			var console, file bytes.Buffer
			l := logger.Multi(
				logger.New(logger.WithWriter(&console)),
				logger.New(logger.WithWriter(&file), logger.WithJSON(true), logger.WithDebug(true)),
			)

			l.Debug("only in file")
			l.Info("everywhere")

			Expect(console.String()).NotTo(ContainSubstring("only in file"))
			Expect(console.String()).To(ContainSubstring("everywhere"))

			lines := strings.Split(strings.TrimSpace(file.String()), "\n")
			Expect(lines).To(HaveLen(2))
			var parsed map[string]any
			Expect(json.Unmarshal([]byte(lines[1]), &parsed)).To(Succeed())
			Expect(parsed["msg"]).To(Equal("everywhere"))
		})
	})

	Describe("Nop", func() {
		It("does not panic on any method", func() {
			l := logger.Nop()
			Expect(func() {
				l.Debug("msg")
				l.Info("msg")
				l.With(zap.String("key", "value")).Warn("msg")
			}).NotTo(Panic())
		})
	})
})
