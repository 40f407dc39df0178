// Package pipeline drives one crawl: read the site directory, then download,
// parse and pivot every station in turn, and persist the combined long table.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/snowcourse-crawler/internal/hash/sha256"
	"github.com/JakeFAU/snowcourse-crawler/internal/metrics"
	"github.com/JakeFAU/snowcourse-crawler/internal/report"
	"github.com/JakeFAU/snowcourse-crawler/internal/snow"
	"github.com/JakeFAU/snowcourse-crawler/internal/storage"
	"github.com/JakeFAU/snowcourse-crawler/internal/telemetry"
)

// ContentType is the media type of the persisted table.
const ContentType = "text/csv"

// ErrNoData is returned when no station produced any rows.
var ErrNoData = errors.New("no snow-course data")

// DirectoryFetcher lists the stations of a region.
type DirectoryFetcher interface {
	Fetch(ctx context.Context, region string) ([]snow.Station, error)
}

// Downloader retrieves the raw report of a station.
type Downloader interface {
	Download(ctx context.Context, stationID string) ([]byte, error)
}

// IDGenerator produces run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Config controls a run.
type Config struct {
	Region     string
	OutputPath string
	// Delay is the pause between consecutive stations. Zero disables it.
	Delay time.Duration
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Directory  DirectoryFetcher
	Downloader Downloader
	Store      storage.BlobStore
	IDs        IDGenerator
	Clock      clockwork.Clock
	Logger     *zap.Logger
	Tracer     trace.Tracer
}

// Result summarizes a completed run.
type Result struct {
	RunID      string
	Discovered int
	WithData   int
	Skipped    int
	Rows       int
	URI        string
	SHA256     string
	Bytes      int64
}

// Pipeline runs crawls. It holds no per-run state and is safe to reuse.
type Pipeline struct {
	cfg        Config
	directory  DirectoryFetcher
	downloader Downloader
	store      storage.BlobStore
	ids        IDGenerator
	clock      clockwork.Clock
	logger     *zap.Logger
	tracer     trace.Tracer
}

// New validates deps and builds a Pipeline. Clock, Logger and Tracer are optional.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	switch {
	case deps.Directory == nil:
		return nil, errors.New("pipeline: directory fetcher is required")
	case deps.Downloader == nil:
		return nil, errors.New("pipeline: downloader is required")
	case deps.Store == nil:
		return nil, errors.New("pipeline: blob store is required")
	case deps.IDs == nil:
		return nil, errors.New("pipeline: id generator is required")
	case cfg.Region == "":
		return nil, errors.New("pipeline: region is required")
	case cfg.OutputPath == "":
		return nil, errors.New("pipeline: output path is required")
	case cfg.Delay < 0:
		return nil, fmt.Errorf("pipeline: delay must be >= 0, got %s", cfg.Delay)
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Tracer == nil {
		deps.Tracer = telemetry.NoopTracer()
	}
	return &Pipeline{
		cfg:        cfg,
		directory:  deps.Directory,
		downloader: deps.Downloader,
		store:      deps.Store,
		ids:        deps.IDs,
		clock:      deps.Clock,
		logger:     deps.Logger.Named("pipeline"),
		tracer:     deps.Tracer,
	}, nil
}

// Stations returns the site directory of the configured region.
func (p *Pipeline) Stations(ctx context.Context) ([]snow.Station, error) {
	stations, err := p.directory.Fetch(ctx, p.cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("site directory: %w", err)
	}
	return stations, nil
}

// Run crawls every station of the region and writes the combined table.
// A directory failure is fatal; station failures are logged and skipped.
func (p *Pipeline) Run(ctx context.Context) (res Result, err error) {
	ctx, span := p.tracer.Start(ctx, "crawl", trace.WithAttributes(attribute.String("region", p.cfg.Region)))
	defer func() {
		span.SetAttributes(
			attribute.Int("stations.discovered", res.Discovered),
			attribute.Int("stations.with_data", res.WithData),
			attribute.Int("rows", res.Rows),
		)
		endSpan(span, err)
		metrics.ObserveRun(err == nil, p.clock.Now())
	}()

	runID, err := p.ids.NewID()
	if err != nil {
		return Result{}, err
	}
	res.RunID = runID
	logger := p.logger.With(zap.String("run_id", runID))

	stations, err := p.Stations(ctx)
	if err != nil {
		return res, err
	}
	res.Discovered = len(stations)
	logger.Info("crawl started",
		zap.String("region", p.cfg.Region),
		zap.Int("stations", len(stations)),
	)

	var combined []snow.LongRow
	for i, station := range stations {
		if i > 0 {
			if err := p.pause(ctx); err != nil {
				return res, fmt.Errorf("crawl interrupted after %d/%d stations: %w", i, len(stations), err)
			}
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("crawl interrupted after %d/%d stations: %w", i, len(stations), err)
		}

		stationLogger := logger.With(zap.String("station", station.ID))
		stationLogger.Info("downloading station",
			zap.Int("index", i+1),
			zap.Int("total", len(stations)),
			zap.String("name", station.Name),
		)
		rows, status, err := p.process(ctx, station, stationLogger)
		metrics.ObserveStation(status)
		if err != nil {
			res.Skipped++
			if errors.Is(err, ErrNoData) {
				stationLogger.Info("station has no data, skipping")
				continue
			}
			stationLogger.Warn("station failed, skipping",
				zap.String("status", status),
				zap.Error(err),
			)
			continue
		}
		res.WithData++
		combined = append(combined, rows...)
	}

	if res.WithData == 0 {
		logger.Warn("no station produced data, nothing written",
			zap.Int("stations", len(stations)),
		)
		return res, ErrNoData
	}

	res.Rows = len(combined)
	res.URI, res.SHA256, res.Bytes, err = p.write(ctx, combined)
	if err != nil {
		return res, err
	}
	metrics.ObserveRows(res.Rows)
	logger.Info("crawl finished",
		zap.Int("stations_with_data", res.WithData),
		zap.Int("stations_skipped", res.Skipped),
		zap.Int("rows", res.Rows),
		zap.String("uri", res.URI),
		zap.String("sha256", res.SHA256),
	)
	return res, nil
}

// RunStation downloads, parses and pivots one station. A station whose report
// yields no rows returns an error wrapping ErrNoData.
func (p *Pipeline) RunStation(ctx context.Context, station snow.Station) ([]snow.LongRow, error) {
	logger := p.logger.With(zap.String("station", station.ID))
	rows, status, err := p.process(ctx, station, logger)
	metrics.ObserveStation(status)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRows(len(rows))
	return rows, nil
}

func (p *Pipeline) process(ctx context.Context, station snow.Station, logger *zap.Logger) (rows []snow.LongRow, status string, err error) {
	ctx, span := p.tracer.Start(ctx, "station", trace.WithAttributes(attribute.String("station.id", station.ID)))
	defer func() {
		span.SetAttributes(attribute.String("status", status), attribute.Int("rows", len(rows)))
		endSpan(span, err)
	}()

	raw, err := p.downloader.Download(ctx, station.ID)
	if err != nil {
		return nil, metrics.StatusDownloadError, err
	}
	wide, err := report.Parse(raw, station.ID)
	if err != nil {
		return nil, metrics.StatusParseError, fmt.Errorf("parse station %s: %w", station.ID, err)
	}
	if len(wide) == 0 {
		return nil, metrics.StatusNoData, fmt.Errorf("station %s: %w", station.ID, ErrNoData)
	}
	logger.Info("station parsed", zap.Int("water_years", len(wide)))

	rows = report.Pivot(wide, station)
	if len(rows) == 0 {
		return nil, metrics.StatusNoData, fmt.Errorf("station %s: %w", station.ID, ErrNoData)
	}
	return rows, metrics.StatusOK, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// pause waits out the inter-station delay or returns early on cancellation.
func (p *Pipeline) pause(ctx context.Context) error {
	if p.cfg.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(p.cfg.Delay):
		metrics.ObservePause(p.cfg.Delay)
		return nil
	}
}

func (p *Pipeline) write(ctx context.Context, rows []snow.LongRow) (string, string, int64, error) {
	var buf bytes.Buffer
	digest := sha256.New()
	if err := report.WriteCSV(io.MultiWriter(&buf, digest), rows); err != nil {
		return "", "", 0, fmt.Errorf("encode table: %w", err)
	}
	uri, err := p.store.PutObject(ctx, p.cfg.OutputPath, ContentType, &buf)
	if err != nil {
		return "", "", 0, fmt.Errorf("persist table: %w", err)
	}
	return uri, digest.Sum(), digest.Size(), nil
}
