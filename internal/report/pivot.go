package report

import (
	"cmp"
	"slices"

	"github.com/JakeFAU/snowcourse-crawler/internal/snow"
)

// Pivot reshapes wide rows into one long row per month, attaching the station
// directory metadata. Months with no date, depth, or SWE are dropped.
// The result is sorted with SortLong.
func Pivot(rows []snow.WideRow, station snow.Station) []snow.LongRow {
	out := make([]snow.LongRow, 0, len(rows)*snow.MonthCount)
	for i, month := range snow.Months {
		for _, row := range rows {
			reading := row.Readings[i]
			if reading.Empty() {
				continue
			}
			out = append(out, snow.LongRow{
				WaterYear:      row.WaterYear,
				Station:        row.Station,
				SiteName:       station.Name,
				County:         station.County,
				Latitude:       station.Latitude,
				Longitude:      station.Longitude,
				Month:          month,
				CollectionDate: reading.Date,
				SnowDepthIn:    reading.SnowDepthIn,
				SWEIn:          reading.SWEIn,
			})
		}
	}
	SortLong(out)
	return out
}

// SortLong orders rows by county, station, water year, and calendar month.
func SortLong(rows []snow.LongRow) {
	slices.SortStableFunc(rows, func(a, b snow.LongRow) int {
		return cmp.Or(
			cmp.Compare(a.County, b.County),
			cmp.Compare(a.Station, b.Station),
			cmp.Compare(a.WaterYear, b.WaterYear),
			cmp.Compare(a.Month.Order(), b.Month.Order()),
		)
	})
}
