// Package apicmder provides the dashboard API server cobra command.
package apicmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/api"
	"github.com/papercomputeco/dossier/cmd/dossier/stack"
	"github.com/papercomputeco/dossier/pkg/config"
)

type apiCommander struct {
	listen         string
	storageDriver  string
	jsonPath       string
	sqlitePath     string
	postgresDSN    string
	redisAddr      string
	eventsProvider string
	kafkaBrokers   string
	kafkaTopic     string
	logJSON        bool
}

const apiLongDesc string = `Run the Dossier dashboard API server for listing, adding and deleting
people and reports. No chat bot is attached, so /api/bot/stats reports 503.`

const apiShortDesc string = "Run the Dossier dashboard API server"

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := append([]string{
				config.FlagAPIListenStandalone,
				config.FlagEventsProvider,
				config.FlagKafkaBrokers,
				config.FlagKafkaTopic,
			}, stack.StorageFlags...)

			cfg, configDir, err := stack.LoadConfig(cmd, keys)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cfg, configDir)
		},
	}

	stack.AddFlags(cmd, map[string]*string{
		config.FlagAPIListenStandalone: &cmder.listen,
		config.FlagStorageDriver:       &cmder.storageDriver,
		config.FlagJSONPath:            &cmder.jsonPath,
		config.FlagSQLite:              &cmder.sqlitePath,
		config.FlagPostgresDSN:         &cmder.postgresDSN,
		config.FlagRedisAddr:           &cmder.redisAddr,
		config.FlagEventsProvider:      &cmder.eventsProvider,
		config.FlagKafkaBrokers:        &cmder.kafkaBrokers,
		config.FlagKafkaTopic:          &cmder.kafkaTopic,
	}, &cmder.logJSON)

	return cmd
}

func (c *apiCommander) run(parent context.Context, cfg *config.Config, configDir string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, closeLogger, err := stack.NewLogger(cfg.Log, os.Stdout, "")
	if err != nil {
		return err
	}
	defer closeLogger()

	s, err := stack.New(ctx, stack.Options{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	server := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, s.Service, logger,
		api.WithMetrics(s.Metrics),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("received signal, shutting down", zap.Error(ctx.Err()))
		return server.Shutdown()
	}
}
