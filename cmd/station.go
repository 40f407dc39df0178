package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/snowcourse-crawler/internal/report"
)

func newStationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "station <id>",
		Short: "Process one station and print its long rows as CSV",
		Example: `  snowcourse station 05K08
  snowcourse station --region UT 11J06`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			defer appInstance.Close()
			p := appInstance.GetPipeline()

			stations, err := p.Stations(cmd.Context())
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			for _, st := range stations {
				if !strings.EqualFold(st.ID, id) {
					continue
				}
				rows, err := p.RunStation(cmd.Context(), st)
				if err != nil {
					return err
				}
				return report.WriteCSV(cmd.OutOrStdout(), rows)
			}
			return fmt.Errorf("station %s is not listed in the %s site directory",
				id, appInstance.GetConfig().Source.Region)
		},
	}
}
