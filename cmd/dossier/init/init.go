// Package initcmder provides the init command for initializing a local .dossier
// directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dossier/pkg/cliui"
	"github.com/papercomputeco/dossier/pkg/config"
	"github.com/papercomputeco/dossier/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .dossier/ directory in the current working directory.

Creates a local .dossier/ directory that takes precedence over the default
~/.dossier/ directory, and writes a config.toml populated with defaults.
Relative JSON and SQLite data paths are stored inside this directory.

An existing config.toml is left untouched.

Examples:
  dossier init
  dossier init --storage sqlite`

const initShortDesc string = "Initialize a local .dossier/ directory"

type initCommander struct {
	storage string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.storage, "storage", "", "Storage driver to write into config.toml")

	return cmd
}

func (c *initCommander) run(w io.Writer) error {
	if c.storage != "" && !config.IsValidStorageDriver(c.storage) {
		return fmt.Errorf("unknown storage driver %q (available: %v)", c.storage, config.ValidStorageDrivers())
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir, err := dotdir.NewManager().Init(cwd)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, err = os.Stat(cfger.GetTarget())
	switch {
	case err == nil:
		fmt.Fprintf(w, "  %s %s\n", cliui.DimStyle.Render("Already initialized:"), dir)
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.NewDefaultConfig()
	if c.storage != "" {
		cfg.Storage.Driver = c.storage
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Initialized .dossier directory: %s\n", cliui.SuccessMark, dir)
	fmt.Fprintf(w, "  %s %s\n",
		cliui.KeyStyle.Render("storage.driver"),
		cliui.ValueStyle.Render(cfg.Storage.Driver),
	)
	return nil
}
