package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/snowcourse-crawler/internal/snow"
)

func ptr(v float64) *float64 { return &v }

func TestPivotDropsEmptyMonths(t *testing.T) {
	t.Parallel()

	station := snow.Station{ID: "05K08", Name: "Berthoud Summit", Latitude: 39.8, Longitude: -105.78, County: "Grand"}
	wide := []snow.WideRow{
		{
			WaterYear: 1951,
			Station:   "05K08",
			Readings: [snow.MonthCount]snow.Reading{
				{},
				{Date: "01/30", SnowDepthIn: ptr(40), SWEIn: ptr(9.5)},
				{},
				{SWEIn: ptr(17.1)},
				{},
				{},
			},
		},
	}

	long := Pivot(wide, station)
	require.Len(t, long, 2)
	for _, row := range long {
		assert.False(t, row.CollectionDate == "" && row.SnowDepthIn == nil && row.SWEIn == nil)
		assert.Equal(t, "Berthoud Summit", row.SiteName)
		assert.Equal(t, "Grand", row.County)
		assert.InDelta(t, 39.8, row.Latitude, 1e-9)
		assert.InDelta(t, -105.78, row.Longitude, 1e-9)
	}
	assert.Equal(t, snow.February, long[0].Month)
	assert.Equal(t, "01/30", long[0].CollectionDate)
	assert.Equal(t, snow.April, long[1].Month)
	assert.Empty(t, long[1].CollectionDate)
}

func TestPivotSortsByCalendarMonth(t *testing.T) {
	t.Parallel()

	full := func(year int) snow.WideRow {
		row := snow.WideRow{WaterYear: year, Station: "05K08"}
		for i := range row.Readings {
			row.Readings[i] = snow.Reading{Date: "d", SnowDepthIn: ptr(float64(i))}
		}
		return row
	}
	long := Pivot([]snow.WideRow{full(1990), full(1989)}, snow.Station{ID: "05K08", County: "Grand"})
	require.Len(t, long, 12)

	want := []snow.Month{snow.January, snow.February, snow.March, snow.April, snow.May, snow.June}
	for i, row := range long[:6] {
		assert.Equal(t, 1989, row.WaterYear)
		assert.Equal(t, want[i], row.Month)
	}
	for i, row := range long[6:] {
		assert.Equal(t, 1990, row.WaterYear)
		assert.Equal(t, want[i], row.Month)
	}
}

func TestSortLongOrdersByCountyStationYearMonth(t *testing.T) {
	t.Parallel()

	rows := []snow.LongRow{
		{County: "Summit", Station: "06K01", WaterYear: 2000, Month: snow.January},
		{County: "Grand", Station: "05K08", WaterYear: 2001, Month: snow.April},
		{County: "Grand", Station: "05K08", WaterYear: 2001, Month: snow.January},
		{County: "Grand", Station: "05K02", WaterYear: 2005, Month: snow.June},
		{County: "Grand", Station: "05K08", WaterYear: 2000, Month: snow.May},
	}
	SortLong(rows)

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.County+"/"+r.Station+"/"+string(r.Month))
	}
	assert.Equal(t, []string{
		"Grand/05K02/Jun",
		"Grand/05K08/May",
		"Grand/05K08/Jan",
		"Grand/05K08/Apr",
		"Summit/06K01/Jan",
	}, got)
	assert.Equal(t, 2000, rows[1].WaterYear)
}

func TestPivotEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Pivot(nil, snow.Station{ID: "x"}))
}
