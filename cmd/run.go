package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/snowcourse-crawler/internal/metrics"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl every station of the region and write the combined table",
		Args:  cobra.NoArgs,
		RunE:  runCrawlCommand,
	}
	addCrawlFlags(cmd, opts)
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	defer appInstance.Close()
	logger := appInstance.GetLogger()

	res, runErr := appInstance.GetPipeline().Run(cmd.Context())
	if path := appInstance.GetConfig().Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("run crawl: %w", runErr)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(),
		"wrote %d rows from %d of %d stations to %s\n",
		res.Rows, res.WithData, res.Discovered, res.URI)
	return err
}
