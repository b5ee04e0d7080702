// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/api"
	apicmder "github.com/papercomputeco/dossier/cmd/dossier/serve/api"
	"github.com/papercomputeco/dossier/cmd/dossier/stack"
	"github.com/papercomputeco/dossier/pkg/bot/terminal"
	"github.com/papercomputeco/dossier/pkg/config"
)

type ServeCommander struct {
	storageDriver  string
	jsonPath       string
	sqlitePath     string
	postgresDSN    string
	redisAddr      string
	apiListen      string
	confirmTimeout string
	eventsProvider string
	kafkaBrokers   string
	kafkaTopic     string
	logJSON        bool
	logFile        string
}

const serveLongDesc string = `Run Dossier services.

Use subcommands to run individual services or all services together:
  dossier serve          Run the dashboard API and the terminal bot together
  dossier serve api      Run just the dashboard API server

The terminal bot reads slash commands from standard input:
  /report <name> | <fact> [| <class>]
  /info <name>`

const serveShortDesc string = "Run Dossier services"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, configDir, err := stack.LoadConfig(cmd, append(append([]string{config.FlagAPIListen}, stack.StorageFlags...), stack.BotFlags...))
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cfg, configDir)
		},
	}

	stack.AddFlags(cmd, map[string]*string{
		config.FlagStorageDriver:  &cmder.storageDriver,
		config.FlagJSONPath:       &cmder.jsonPath,
		config.FlagSQLite:         &cmder.sqlitePath,
		config.FlagPostgresDSN:    &cmder.postgresDSN,
		config.FlagRedisAddr:      &cmder.redisAddr,
		config.FlagAPIListen:      &cmder.apiListen,
		config.FlagConfirmTimeout: &cmder.confirmTimeout,
		config.FlagEventsProvider: &cmder.eventsProvider,
		config.FlagKafkaBrokers:   &cmder.kafkaBrokers,
		config.FlagKafkaTopic:     &cmder.kafkaTopic,
	}, &cmder.logJSON)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON debug logs to this file")

	cmd.AddCommand(apicmder.NewAPICmd())

	return cmd
}

func (c *ServeCommander) run(parent context.Context, cfg *config.Config, configDir string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The terminal bot owns stdout, so logs go to stderr.
	logger, closeLogger, err := stack.NewLogger(cfg.Log, os.Stderr, c.logFile)
	if err != nil {
		return err
	}
	defer closeLogger()

	s, err := stack.New(ctx, stack.Options{
		Config:    cfg,
		ConfigDir: configDir,
		Progress:  os.Stderr,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	gateway := terminal.New(terminal.Config{
		In:     os.Stdin,
		Out:    os.Stdout,
		Logger: logger,
	})
	dispatcher, err := s.NewDispatcher(gateway)
	if err != nil {
		return err
	}

	apiServer := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, s.Service, logger,
		api.WithStats(gateway),
		api.WithMetrics(s.Metrics),
	)

	logger.Info("starting api server",
		zap.String("api_addr", cfg.API.Listen),
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 3)

	// Start API server in goroutine
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Start the dispatcher, then the terminal gateway feeding it
	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("dispatcher error: %w", err)
		}
	}()
	go func() {
		err := gateway.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("terminal bot error: %w", err)
			return
		}
		// Input closed: keep serving the API until a signal arrives.
		logger.Info("terminal bot stopped")
	}()

	select {
	case err := <-errChan:
		_ = apiServer.Shutdown()
		return err
	case <-ctx.Done():
		logger.Info("received signal, shutting down")
		return apiServer.Shutdown()
	}
}
