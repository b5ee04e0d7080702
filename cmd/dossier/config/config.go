// Package configcmder provides the config command for managing persistent
// dossier configuration stored in the .dossier/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent dossier configuration.

Configuration is stored as config.toml in the .dossier/ directory and provides
default values for command flags. CLI flags and DOSSIER_ environment variables
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.json_path, storage.sqlite_path,
  storage.postgres_dsn, storage.redis_addr,
  api.listen, bot.confirm_timeout,
  events.provider, events.brokers, events.topic,
  log.debug, log.json

Use subcommands to get, set, or list configuration values:
  dossier config set <key> <value>    Set a configuration value
  dossier config get <key>            Get a configuration value
  dossier config list                 List all configuration values

Examples:
  dossier config set storage.driver sqlite
  dossier config set bot.confirm_timeout 90s
  dossier config get storage.driver
  dossier config list`

const configShortDesc string = "Manage persistent dossier configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
