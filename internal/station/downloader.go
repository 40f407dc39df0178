// Package station downloads the full period-of-record monthly report for one snow course.
package station

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	collyfetcher "github.com/JakeFAU/snowcourse-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/snowcourse-crawler/internal/metrics"
)

// Fetcher retrieves a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (collyfetcher.Response, error)
}

// Downloader builds report-generator URLs and fetches raw station reports.
type Downloader struct {
	fetcher  Fetcher
	template string
	region   string
	logger   *zap.Logger
}

// NewDownloader constructs a Downloader. template must contain a {station}
// placeholder and may contain {region}.
func NewDownloader(fetcher Fetcher, template, region string, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		fetcher:  fetcher,
		template: template,
		region:   region,
		logger:   logger,
	}
}

// URL returns the report URL for stationID.
func (d *Downloader) URL(stationID string) string {
	return strings.NewReplacer("{station}", stationID, "{region}", d.region).Replace(d.template)
}

// Download returns the raw report text for stationID.
func (d *Downloader) Download(ctx context.Context, stationID string) ([]byte, error) {
	if strings.TrimSpace(stationID) == "" {
		return nil, fmt.Errorf("station id is required")
	}
	url := d.URL(stationID)
	start := time.Now()
	resp, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		metrics.ObserveRequest("report", time.Since(start), 0)
		return nil, fmt.Errorf("download station %s: %w", stationID, err)
	}
	metrics.ObserveRequest("report", resp.Duration, len(resp.Body))
	d.logger.Debug("report downloaded",
		zap.String("station", stationID),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
	)
	return resp.Body, nil
}
