// Package directory scrapes the NWCC snow-course site directory for a state.
//
// The directory page lists one station per table row; rows that link to the
// station's historical snow-month report carry the station identifier in the
// link's query string. Name, coordinates and county are read from fixed cells.
package directory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	collyfetcher "github.com/JakeFAU/snowcourse-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/snowcourse-crawler/internal/metrics"
	"github.com/JakeFAU/snowcourse-crawler/internal/snow"
)

// Fixed cell positions of a directory row.
const (
	nameCell      = 1
	latitudeCell  = 5
	longitudeCell = 6
	countyCell    = 9
	minCells      = countyCell + 1
)

// ErrNoTable is returned when the directory page holds no table.
var ErrNoTable = errors.New("site directory has no table")

var stationPattern = regexp.MustCompile(`station=([^&]+)`)

// PageFetcher retrieves a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (collyfetcher.Response, error)
}

// Fetcher downloads and parses the site directory.
type Fetcher struct {
	fetcher     PageFetcher
	urlTemplate string
	logger      *zap.Logger
}

// New builds a Fetcher. urlTemplate carries one %s verb for the region.
func New(fetcher PageFetcher, urlTemplate string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		fetcher:     fetcher,
		urlTemplate: urlTemplate,
		logger:      logger,
	}
}

// URL returns the directory URL for region.
func (f *Fetcher) URL(region string) string {
	return fmt.Sprintf(f.urlTemplate, strings.ToUpper(strings.TrimSpace(region)))
}

// Fetch returns the stations listed for region, in page order.
func (f *Fetcher) Fetch(ctx context.Context, region string) ([]snow.Station, error) {
	url := f.URL(region)
	start := time.Now()
	resp, err := f.fetcher.Fetch(ctx, url)
	metrics.ObserveRequest("directory", time.Since(start), len(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("fetch site directory %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse site directory: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	stations := Parse(table, f.logger)
	f.logger.Info("site directory parsed",
		zap.String("region", strings.ToUpper(region)),
		zap.Int("stations", len(stations)),
	)
	return stations, nil
}

// Parse extracts stations from a directory table. The first row is the header.
// Rows without a snow-month history link are skipped silently; rows with a
// link but missing cells or unreadable coordinates are skipped with a warning.
func Parse(table *goquery.Selection, logger *zap.Logger) []snow.Station {
	if logger == nil {
		logger = zap.NewNop()
	}
	stations := make([]snow.Station, 0)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		id, ok := stationID(row)
		if !ok {
			return
		}
		cells := row.Find("td")
		if cells.Length() < minCells {
			logger.Warn("directory row has too few cells",
				zap.String("station", id),
				zap.Int("cells", cells.Length()),
			)
			return
		}
		lat, latErr := parseCoordinate(cellText(cells, latitudeCell))
		lon, lonErr := parseCoordinate(cellText(cells, longitudeCell))
		if err := errors.Join(latErr, lonErr); err != nil {
			logger.Warn("directory row has unreadable coordinates",
				zap.String("station", id),
				zap.Error(err),
			)
			return
		}
		stations = append(stations, snow.Station{
			ID:        id,
			Name:      cellText(cells, nameCell),
			Latitude:  lat,
			Longitude: lon,
			County:    cellText(cells, countyCell),
		})
	})
	return stations
}

// stationID returns the identifier of the first snow-month history link in row.
func stationID(row *goquery.Selection) (string, bool) {
	var id string
	row.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !strings.Contains(href, "station") || !strings.Contains(href, "snowmonth_hist") {
			return true
		}
		match := stationPattern.FindStringSubmatch(href)
		if match == nil {
			return true
		}
		id = match[1]
		return false
	})
	return id, id != ""
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

func parseCoordinate(text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("coordinate %q: %w", text, err)
	}
	return v, nil
}
