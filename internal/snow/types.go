// Package snow defines the snow-course records shared across the crawl pipeline.
package snow

// Month is one of the report months carried by the group-by-month report.
type Month string

// Report months in their fixed column order.
const (
	January  Month = "Jan"
	February Month = "Feb"
	March    Month = "Mar"
	April    Month = "Apr"
	May      Month = "May"
	June     Month = "Jun"
)

// Months lists the report months in column order.
var Months = [MonthCount]Month{January, February, March, April, May, June}

// MonthCount is the number of month triplets in a wide row.
const MonthCount = 6

// ReportFieldCount is the number of fields in each record of the report data block:
// the water year followed by one triplet per month.
const ReportFieldCount = 1 + MonthCount*3

// WideColumnCount is the width of a wide row once tagged with its station.
const WideColumnCount = ReportFieldCount + 1

// Order returns the calendar position of m (Jan=1..Jun=6), or 0 for an unknown month.
func (m Month) Order() int {
	for i, month := range Months {
		if month == m {
			return i + 1
		}
	}
	return 0
}

// Station is one entry of the snow-course site directory.
type Station struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	County    string
}

// Reading is the (date, depth, SWE) triplet collected for one month.
// An empty Date or a nil measurement means the value is absent.
type Reading struct {
	Date        string
	SnowDepthIn *float64
	SWEIn       *float64
}

// Empty reports whether all three values are absent.
func (r Reading) Empty() bool {
	return r.Date == "" && r.SnowDepthIn == nil && r.SWEIn == nil
}

// WideRow is one water year of a station report, with readings aligned to Months.
type WideRow struct {
	WaterYear int
	Station   string
	Readings  [MonthCount]Reading
}

// LongRow is one (station, water year, month) observation.
type LongRow struct {
	WaterYear      int
	Station        string
	SiteName       string
	County         string
	Latitude       float64
	Longitude      float64
	Month          Month
	CollectionDate string
	SnowDepthIn    *float64
	SWEIn          *float64
}
