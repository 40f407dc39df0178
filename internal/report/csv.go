package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JakeFAU/snowcourse-crawler/internal/snow"
)

// Columns is the header of the combined output table.
var Columns = []string{
	"water_year",
	"station",
	"site_name",
	"county",
	"latitude",
	"longitude",
	"month",
	"collection_date",
	"snow_depth_in",
	"swe_in",
}

// StationColumns is the header of the site directory listing.
var StationColumns = []string{"station", "site_name", "latitude", "longitude", "county"}

// WriteCSV encodes long rows, preceded by the Columns header.
func WriteCSV(w io.Writer, rows []snow.LongRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.WaterYear),
			row.Station,
			row.SiteName,
			row.County,
			formatFloat(row.Latitude),
			formatFloat(row.Longitude),
			string(row.Month),
			row.CollectionDate,
			formatOptional(row.SnowDepthIn),
			formatOptional(row.SWEIn),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteStations encodes the site directory, preceded by the StationColumns header.
func WriteStations(w io.Writer, stations []snow.Station) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StationColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range stations {
		if err := cw.Write([]string{s.ID, s.Name, formatFloat(s.Latitude), formatFloat(s.Longitude), s.County}); err != nil {
			return fmt.Errorf("write station %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
