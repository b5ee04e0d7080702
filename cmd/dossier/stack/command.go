package stack

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/config"
	"github.com/papercomputeco/dossier/pkg/logger"
)

// StorageFlags are the flag registry keys shared by every command that opens
// storage.
var StorageFlags = []string{
	config.FlagStorageDriver,
	config.FlagJSONPath,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagRedisAddr,
}

// BotFlags are the flag registry keys for commands that run the bot.
var BotFlags = []string{
	config.FlagConfirmTimeout,
	config.FlagEventsProvider,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

// AddFlags registers the string flags named by keys, plus --log-json, on cmd.
func AddFlags(cmd *cobra.Command, values map[string]*string, logJSON *bool) {
	for key, target := range values {
		config.AddStringFlag(cmd, config.DossierFlags, key, target)
	}
	config.AddBoolFlag(cmd, config.DossierFlags, config.FlagLogJSON, logJSON)
}

// LoadConfig resolves the effective configuration for cmd: flags bound for
// keys, then DOSSIER_ environment variables, config.toml and defaults. The
// global --debug flag forces debug logging. It also returns the --config-dir
// override.
func LoadConfig(cmd *cobra.Command, keys []string) (*config.Config, string, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, "", err
	}
	bound := append(append([]string{}, keys...), config.FlagLogJSON)
	config.BindRegisteredFlags(v, cmd, config.DossierFlags, bound)

	cfg := config.FromViper(v)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Debug = true
	}

	return cfg, configDir, nil
}

// NewLogger builds the command logger. Console output goes to console,
// rendered for humans unless JSON is configured. When logFile is set, a JSON
// debug stream is also appended to it. The returned func syncs and closes the
// outputs.
func NewLogger(c config.LogConfig, console io.Writer, logFile string) (*zap.Logger, func(), error) {
	consoleLogger := logger.New(
		logger.WithDebug(c.Debug),
		logger.WithJSON(c.JSON),
		logger.WithPretty(true),
		logger.WithWriter(console),
	)
	if logFile == "" {
		return consoleLogger, func() { _ = consoleLogger.Sync() }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	l := logger.Multi(
		consoleLogger,
		logger.New(logger.WithDebug(true), logger.WithJSON(true), logger.WithWriter(f)),
	)

	return l, func() {
		_ = l.Sync()
		f.Close()
	}, nil
}
