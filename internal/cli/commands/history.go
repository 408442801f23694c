package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/astroforge/astro/internal/cli/config"
	"github.com/astroforge/astro/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long:  `List past runs from the history database, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg.StatePath == "" {
				return fmt.Errorf("run history is disabled (empty state path)")
			}

			store, err := openStore(cfg.StatePath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Source", "Status", "Gas left", "Started"})
			for _, run := range runs {
				gas := ""
				if run.GasRemaining != nil {
					gas = fmt.Sprintf("%d", *run.GasRemaining)
				}
				t.AppendRow(table.Row{
					shortID(run.ID),
					run.Source,
					statusCell(run.Status),
					gas,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusCell(status state.RunStatus) string {
	switch status {
	case state.RunStatusSuccess:
		return okStyle.Render(string(status))
	case state.RunStatusPanic, state.RunStatusFailed:
		return errorStyle.Render(string(status))
	}
	return string(status)
}
