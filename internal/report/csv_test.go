package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/snowcourse-crawler/internal/snow"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	rows := []snow.LongRow{
		{
			WaterYear: 1951, Station: "05K08", SiteName: "Berthoud Summit", County: "Grand",
			Latitude: 39.8, Longitude: -105.78, Month: snow.February,
			CollectionDate: "01/30", SnowDepthIn: ptr(40), SWEIn: ptr(9.5),
		},
		{
			WaterYear: 1951, Station: "05K08", SiteName: "Berthoud, Summit", County: "Grand",
			Latitude: 39.8, Longitude: -105.78, Month: snow.April, SWEIn: ptr(17.1),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "water_year,station,site_name,county,latitude,longitude,month,collection_date,snow_depth_in,swe_in", lines[0])
	assert.Equal(t, "1951,05K08,Berthoud Summit,Grand,39.8,-105.78,Feb,01/30,40,9.5", lines[1])
	assert.Equal(t, `1951,05K08,"Berthoud, Summit",Grand,39.8,-105.78,Apr,,,17.1`, lines[2])
}

func TestWriteStations(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteStations(&buf, []snow.Station{{ID: "05K08", Name: "Berthoud Summit", Latitude: 39.8, Longitude: -105.78, County: "Grand"}})
	require.NoError(t, err)
	assert.Equal(t, "station,site_name,latitude,longitude,county\n05K08,Berthoud Summit,39.8,-105.78,Grand\n", buf.String())
}
