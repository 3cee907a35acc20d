package commands

import (
	"time"

	"repcal/internal/runlog"
	"repcal/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit *int

func init() {
	runsLimit = runsCmd.Flags().Int("limit", 20, "Number of journal entries to show.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--limit N]",
	Short: "Show recent scrape journal entries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sqliteutil.OpenDB(runlog.Schema, cfg.JournalDB)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := runlog.NewStore(db).Recent(cmd.Context(), *runsLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Started", "Theater", "Films", "Showtimes", "Duration", "Status"})
		for _, e := range entries {
			status := "ok"
			if e.Err != "" {
				status = e.Err
			}
			t.AppendRow(table.Row{
				e.StartedAt.Format("2006-01-02 15:04"),
				e.Theater,
				e.Films,
				e.Showtimes,
				e.Duration.Round(time.Millisecond),
				status,
			})
		}
		t.Render()
		return nil
	},
}
