package commands

import (
	"context"
	"fmt"
	"os"

	"repcal/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	cfg Config
	tel telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "repcal",
	Short: "repcal scrapes Toronto rep cinema showtimes and publishes a static calendar.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "repcal")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		cfg, err = loadConfig(configPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		tel.Shutdown(context.Background())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "Path to the configuration file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
