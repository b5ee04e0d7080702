// Package statuscmder provides the status command for summarising the people
// and reports held by the configured storage.
package statuscmder

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dossier/cmd/dossier/stack"
	"github.com/papercomputeco/dossier/pkg/cliui"
	"github.com/papercomputeco/dossier/pkg/config"
	"github.com/papercomputeco/dossier/pkg/utils"
)

const statusLongDesc string = `Show what the configured storage holds.

Opens the storage selected by config.toml (or the flags below), loads the
registry and prints every person with their report count and latest fact.

Examples:
  dossier status
  dossier status --storage sqlite --sqlite ./dossier.db`

const statusShortDesc string = "Show stored people and reports"

const previewLen = 60

type statusCommander struct {
	storageDriver string
	jsonPath      string
	sqlitePath    string
	postgresDSN   string
	redisAddr     string
	logJSON       bool
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, configDir, err := stack.LoadConfig(cmd, stack.StorageFlags)
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), cmd.OutOrStdout(), cfg, configDir)
		},
	}

	stack.AddFlags(cmd, map[string]*string{
		config.FlagStorageDriver: &cmder.storageDriver,
		config.FlagJSONPath:      &cmder.jsonPath,
		config.FlagSQLite:        &cmder.sqlitePath,
		config.FlagPostgresDSN:   &cmder.postgresDSN,
		config.FlagRedisAddr:     &cmder.redisAddr,
	}, &cmder.logJSON)

	return cmd
}

func runStatus(ctx context.Context, w io.Writer, cfg *config.Config, configDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Status only reads, so no events are published.
	cfg.Events.Provider = config.EventsProviderNone

	s, err := stack.New(ctx, stack.Options{
		Config:    cfg,
		ConfigDir: configDir,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	people, reports := s.Registry.Count()
	fmt.Fprintf(w, "\n  %s  %s\n", cliui.KeyStyle.Render("Storage:"), cliui.ValueStyle.Render(cfg.Storage.Driver))
	fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("People: "), cliui.NameStyle.Render(strconv.Itoa(people)))
	fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render("Reports:"), cliui.NameStyle.Render(strconv.Itoa(reports)))

	if people == 0 {
		fmt.Fprintf(w, "  %s No people recorded yet.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	for i, p := range s.Registry.ListPeopleWithReports() {
		latest := cliui.DimStyle.Render("no reports")
		if n := len(p.Reports); n > 0 {
			latest = cliui.ValueStyle.Render(utils.Truncate(p.Reports[n-1].Fact, previewLen))
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.NameStyle.Render(p.Name),
			cliui.DimStyle.Render(fmt.Sprintf("[%d]", len(p.Reports))),
			latest,
		)
	}

	fmt.Fprintln(w)
	return nil
}
