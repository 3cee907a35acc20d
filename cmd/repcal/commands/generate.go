package commands

import (
	"context"
	"log/slog"

	"repcal/internal/generator"
	"repcal/internal/registry"
	"repcal/internal/showtimes"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the calendar pages from the existing data files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generatePages(cmd.Context())
	},
}

func generatePages(ctx context.Context) error {
	reg, err := registry.New(cfg.Theaters, nil)
	if err != nil {
		return err
	}

	g := generator.New(showtimes.NewStore(cfg.DataDir), reg.Theaters())
	err = g.WriteCalendar(ctx, cfg.CalendarPath)
	if err != nil {
		return err
	}
	err = g.WriteFilms(ctx, cfg.FilmsPath)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "pages generated", "calendar", cfg.CalendarPath, "films", cfg.FilmsPath)
	return nil
}
