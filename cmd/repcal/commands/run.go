package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"repcal/internal/notify"
	"repcal/internal/registry"
	"repcal/lib/timezone"

	"github.com/spf13/cobra"
)

var (
	runTheaters        *[]string
	runParallel        *bool
	runWorkers         *int
	runScrapeOnly      *bool
	runGenerateOnly    *bool
	runNoGit           *bool
	runContinueOnError *bool
)

func init() {
	f := runCmd.Flags()
	runTheaters = f.StringSlice("theaters", nil, "Theater ids to scrape (default: all enabled).")
	runParallel = f.Bool("parallel", false, "Scrape theaters concurrently.")
	runWorkers = f.Int("workers", 3, "Concurrent theaters when --parallel is set.")
	runScrapeOnly = f.Bool("scrape-only", false, "Scrape and merge only, skip generation and git.")
	runGenerateOnly = f.Bool("generate-only", false, "Skip scraping, render pages from existing data.")
	runNoGit = f.Bool("no-git", false, "Skip the git commit and push phase.")
	runContinueOnError = f.Bool("continue-on-error", false, "Generate and publish even if some theaters failed.")
	rootCmd.AddCommand(runCmd)
}

type runOptions struct {
	theaters        []string
	parallel        bool
	workers         int
	scrapeOnly      bool
	generateOnly    bool
	noGit           bool
	continueOnError bool
}

func validateRunFlags(scrapeOnly, generateOnly bool) error {
	if scrapeOnly && generateOnly {
		return errors.New("--scrape-only and --generate-only cannot be combined")
	}
	return nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape every theater, render the calendar and push it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := validateRunFlags(*runScrapeOnly, *runGenerateOnly)
		if err != nil {
			return err
		}
		return executeRun(cmd.Context(), runOptions{
			theaters:        *runTheaters,
			parallel:        *runParallel,
			workers:         *runWorkers,
			scrapeOnly:      *runScrapeOnly,
			generateOnly:    *runGenerateOnly,
			noGit:           *runNoGit,
			continueOnError: *runContinueOnError,
		})
	},
}

func executeRun(ctx context.Context, opts runOptions) error {
	if !opts.generateOnly {
		reg, err := registry.New(cfg.Theaters, cfg.httpDump())
		if err != nil {
			return err
		}
		selected, err := reg.Select(opts.theaters)
		if err != nil {
			return err
		}

		startedAt := timezone.Now()
		results := scrapeTheaters(ctx, cfg, selected, opts.parallel, opts.workers)
		renderSummary(results)
		recordResults(ctx, cfg, startedAt, results)

		failures := failureMap(results)
		if len(failures) > 0 {
			err := notify.New(cfg.Notify).ScrapeFailures(ctx, failures)
			if err != nil {
				slog.WarnContext(ctx, "could not send failure notification", "err", err)
			}
			if !opts.continueOnError {
				return fmt.Errorf("%d theater(s) failed to scrape", len(failures))
			}
		}
	}

	if opts.scrapeOnly {
		return nil
	}

	err := generatePages(ctx)
	if err != nil {
		return err
	}

	if opts.noGit || cfg.Git.Disabled {
		return nil
	}
	return publishPages(ctx)
}
