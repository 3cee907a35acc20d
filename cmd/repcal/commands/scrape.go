package commands

import (
	"fmt"

	"repcal/internal/registry"
	"repcal/lib/timezone"

	"github.com/spf13/cobra"
)

var (
	scrapeTheatersFlag *[]string
	scrapeParallel     *bool
	scrapeWorkers      *int
)

func init() {
	f := scrapeCmd.Flags()
	scrapeTheatersFlag = f.StringSlice("theaters", nil, "Theater ids to scrape (default: all enabled).")
	scrapeParallel = f.Bool("parallel", false, "Scrape theaters concurrently.")
	scrapeWorkers = f.Int("workers", 3, "Concurrent theaters when --parallel is set.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--theaters id...] [--parallel]",
	Short: "Scrape theaters and merge into the data files, nothing else.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := registry.New(cfg.Theaters, cfg.httpDump())
		if err != nil {
			return err
		}
		selected, err := reg.Select(*scrapeTheatersFlag)
		if err != nil {
			return err
		}

		startedAt := timezone.Now()
		results := scrapeTheaters(ctx, cfg, selected, *scrapeParallel, *scrapeWorkers)
		renderSummary(results)
		recordResults(ctx, cfg, startedAt, results)

		if failures := failureMap(results); len(failures) > 0 {
			return fmt.Errorf("%d theater(s) failed to scrape", len(failures))
		}
		return nil
	},
}
