// Package dossiercmder
package dossiercmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/dossier/cmd/dossier/config"
	initcmder "github.com/papercomputeco/dossier/cmd/dossier/init"
	servecmder "github.com/papercomputeco/dossier/cmd/dossier/serve"
	simulatecmder "github.com/papercomputeco/dossier/cmd/dossier/simulate"
	statuscmder "github.com/papercomputeco/dossier/cmd/dossier/status"
	versioncmder "github.com/papercomputeco/dossier/cmd/version"
)

const dossierLongDesc string = `Dossier records short facts about people reported through chat commands.

Run services using:
  dossier serve api      Run the dashboard API server
  dossier serve          Run the API server and the terminal bot together
  dossier simulate       Run the terminal bot on its own`

const dossierShortDesc string = "Dossier - community fact reports"

func NewDossierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dossier",
		Short:         dossierShortDesc,
		Long:          dossierLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .dossier/ directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(simulatecmder.NewSimulateCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
