package commands

import (
	"context"

	"repcal/internal/publisher"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Commit the data files and pages and push to the hosting branch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishPages(cmd.Context())
	},
}

func publishPages(ctx context.Context) error {
	p := publisher.New(cfg.Git.Dir, cfg.publishPaths())
	p.Remote = cfg.Git.Remote
	p.Branch = cfg.Git.Branch

	err := p.Verify(ctx)
	if err != nil {
		return err
	}
	return p.Publish(ctx)
}
