package commands

import (
	"log/slog"

	"repcal/lib/telemetry"
	"repcal/lib/timezone"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var daemonCron *string

func init() {
	daemonCron = daemonCmd.Flags().String("cron", "0 2 * * *", "Cron schedule for the full pipeline, evaluated in Toronto time.")
	rootCmd.AddCommand(daemonCmd)
}

// For hosts without a usable OS scheduler. Otherwise prefer cron or a
// systemd timer invoking `repcal run`.
var daemonCmd = &cobra.Command{
	Use:   "daemon --cron <spec>",
	Short: "Run the full pipeline on a schedule.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx)

		c := cron.New(cron.WithLocation(timezone.Location))
		_, err := c.AddFunc(*daemonCron, func() {
			slog.InfoContext(ctx, "scheduled run starting")
			err := executeRun(ctx, runOptions{continueOnError: true})
			if err != nil {
				slog.ErrorContext(ctx, "scheduled run failed", "err", err)
				return
			}
			slog.InfoContext(ctx, "scheduled run finished")
		})
		if err != nil {
			return err
		}

		slog.InfoContext(ctx, "daemon started", "cron", *daemonCron)
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}
