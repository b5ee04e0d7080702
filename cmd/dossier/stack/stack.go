// Package stack assembles the long-lived components shared by the dossier
// commands: storage, registry, metrics, event publishing and the bot service.
package stack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/bot"
	"github.com/papercomputeco/dossier/pkg/cliui"
	"github.com/papercomputeco/dossier/pkg/config"
	"github.com/papercomputeco/dossier/pkg/dotdir"
	"github.com/papercomputeco/dossier/pkg/eventstream"
	"github.com/papercomputeco/dossier/pkg/eventstream/kafka"
	"github.com/papercomputeco/dossier/pkg/eventstream/nop"
	"github.com/papercomputeco/dossier/pkg/eventstream/worker"
	"github.com/papercomputeco/dossier/pkg/metrics"
	"github.com/papercomputeco/dossier/pkg/registry"
	"github.com/papercomputeco/dossier/pkg/storage"
	"github.com/papercomputeco/dossier/pkg/storage/open"
)

// Options configures New.
type Options struct {
	Config *config.Config

	// ConfigDir overrides the .dossier/ directory relative paths resolve to.
	ConfigDir string

	// Progress receives step output while loading. Nil disables it.
	Progress io.Writer

	Logger *zap.Logger
}

// Stack is the assembled set of components.
type Stack struct {
	Config    *config.Config
	Driver    storage.Driver
	Registry  *registry.Registry
	Metrics   *metrics.Metrics
	Publisher eventstream.Publisher
	Pool      *worker.Pool
	Service   *bot.Service

	logger *zap.Logger
}

// New opens storage, hydrates the registry and starts the event pool.
// A registry load failure is logged and the registry starts empty.
func New(ctx context.Context, opts Options) (*Stack, error) {
	if opts.Config == nil {
		opts.Config = config.NewDefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Stack{
		Config:  opts.Config,
		Metrics: metrics.New(),
		logger:  opts.Logger,
	}

	storageConfig, err := resolvePaths(opts.Config.Storage, opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	err = step(opts.Progress, "Opening "+storageConfig.Driver+" storage", func() error {
		s.Driver, err = open.Driver(ctx, storageConfig, s.logger)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = step(opts.Progress, "Loading registry", func() error {
		s.Registry, err = registry.New(ctx, s.Driver, registry.WithLogger(s.logger))
		if registry.IsWarning(err) {
			s.Metrics.PersistenceWarnings.Inc()
			return nil
		}
		return err
	})
	if err != nil {
		s.Driver.Close()
		return nil, err
	}

	s.Publisher, err = newPublisher(opts.Config.Events)
	if err != nil {
		s.Driver.Close()
		return nil, err
	}

	s.Pool, err = worker.NewPool(&worker.Config{
		Publisher: s.Publisher,
		OnResult: func(_ worker.Job, err error) {
			s.Metrics.RecordPublish(err)
		},
		Logger: s.logger,
	})
	if err != nil {
		s.Publisher.Close()
		s.Driver.Close()
		return nil, err
	}

	s.Service = bot.NewService(s.Registry,
		bot.WithServiceLogger(s.logger),
		bot.WithEvents(s.Pool),
		bot.WithMetrics(s.Metrics),
	)

	people, reports := s.Registry.Count()
	s.logger.Info("dossier stack ready",
		zap.String("storage", storageConfig.Driver),
		zap.String("events", opts.Config.Events.Provider),
		zap.Int("people", people),
		zap.Int("reports", reports),
	)

	return s, nil
}

// NewDispatcher builds a dispatcher for gateway using the configured
// confirmation timeout.
func (s *Stack) NewDispatcher(gateway bot.Gateway) (*bot.Dispatcher, error) {
	timeout, err := s.Config.Bot.Timeout()
	if err != nil {
		return nil, err
	}

	return bot.NewDispatcher(&bot.DispatcherConfig{
		Service:        s.Service,
		Gateway:        gateway,
		ConfirmTimeout: timeout,
		Metrics:        s.Metrics,
		Logger:         s.logger,
	})
}

// Close drains pending events and closes the publisher and storage.
func (s *Stack) Close() error {
	s.Pool.Close()
	return errors.Join(s.Publisher.Close(), s.Driver.Close())
}

func newPublisher(c config.EventsConfig) (eventstream.Publisher, error) {
	switch c.Provider {
	case config.EventsProviderNone, "":
		return nop.NewPublisher(), nil
	case config.EventsProviderKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: SplitList(c.Brokers),
			Topic:   c.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events provider %q", c.Provider)
	}
}

// resolvePaths anchors relative file paths to the .dossier/ directory.
func resolvePaths(c config.StorageConfig, configDir string) (config.StorageConfig, error) {
	ddm := dotdir.NewManager()

	var err error
	switch c.Driver {
	case config.StorageDriverJSON, "":
		c.JSONPath, err = ddm.Resolve(configDir, c.JSONPath)
	case config.StorageDriverSQLite:
		c.SQLitePath, err = ddm.Resolve(configDir, c.SQLitePath)
	}
	if err != nil {
		return c, fmt.Errorf("resolving storage path: %w", err)
	}

	return c, nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func step(w io.Writer, msg string, fn func() error) error {
	if w == nil {
		return fn()
	}
	return cliui.Step(w, msg, fn)
}
