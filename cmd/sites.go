package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JakeFAU/snowcourse-crawler/internal/report"
)

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "Print the snow-course site directory of the region as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			defer appInstance.Close()

			stations, err := appInstance.GetPipeline().Stations(cmd.Context())
			if err != nil {
				return err
			}
			return report.WriteStations(cmd.OutOrStdout(), stations)
		},
	}
}
