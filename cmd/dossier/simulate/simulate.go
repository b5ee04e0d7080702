// Package simulatecmder provides the simulate command, which runs the chat bot
// against the terminal instead of a chat platform.
package simulatecmder

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/dossier/cmd/dossier/stack"
	"github.com/papercomputeco/dossier/pkg/bot/terminal"
	"github.com/papercomputeco/dossier/pkg/config"
)

type SimulateCommander struct {
	storageDriver  string
	jsonPath       string
	sqlitePath     string
	postgresDSN    string
	redisAddr      string
	confirmTimeout string
	eventsProvider string
	kafkaBrokers   string
	kafkaTopic     string
	logJSON        bool
	logFile        string
	user           string

	in  io.Reader
	out io.Writer
}

const simulateLongDesc string = `Run the Dossier bot in the terminal.

Slash commands typed on standard input are handled exactly as they would be
from a chat platform. Conflict confirmations print Yes/No buttons that are
clicked with /yes and /no.

  /report <name> | <fact> [| <class>]
  /info <name>
  /as <user>       switch the reporting user
  /quit

Examples:
  dossier simulate --storage memory
  dossier simulate --user anna --confirm-timeout 10s`

const simulateShortDesc string = "Run the bot in the terminal"

func NewSimulateCmd() *cobra.Command {
	cmder := &SimulateCommander{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: simulateShortDesc,
		Long:  simulateLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, configDir, err := stack.LoadConfig(cmd, append(append([]string{}, stack.StorageFlags...), stack.BotFlags...))
			if err != nil {
				return err
			}
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context(), cfg, configDir)
		},
	}

	stack.AddFlags(cmd, map[string]*string{
		config.FlagStorageDriver:  &cmder.storageDriver,
		config.FlagJSONPath:       &cmder.jsonPath,
		config.FlagSQLite:         &cmder.sqlitePath,
		config.FlagPostgresDSN:    &cmder.postgresDSN,
		config.FlagRedisAddr:      &cmder.redisAddr,
		config.FlagConfirmTimeout: &cmder.confirmTimeout,
		config.FlagEventsProvider: &cmder.eventsProvider,
		config.FlagKafkaBrokers:   &cmder.kafkaBrokers,
		config.FlagKafkaTopic:     &cmder.kafkaTopic,
	}, &cmder.logJSON)
	cmd.Flags().StringVarP(&cmder.user, "user", "u", "", "User the commands are reported as")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON debug logs to this file")

	return cmd
}

func (c *SimulateCommander) run(parent context.Context, cfg *config.Config, configDir string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, closeLogger, err := stack.NewLogger(cfg.Log, os.Stderr, c.logFile)
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

	gateway := terminal.New(terminal.Config{
		In:     c.in,
		Out:    c.out,
		User:   c.user,
		Logger: logger,
	})
	dispatcher, err := s.NewDispatcher(gateway)
	if err != nil {
		return err
	}

	// The gateway closes its event channel on exit, which ends the dispatcher
	// once in-flight commands finish.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		return gateway.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
