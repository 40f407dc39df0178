// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	gcsstorage "cloud.google.com/go/storage"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/snowcourse-crawler/internal/config"
	"github.com/JakeFAU/snowcourse-crawler/internal/directory"
	collyfetcher "github.com/JakeFAU/snowcourse-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/snowcourse-crawler/internal/id/uuid"
	"github.com/JakeFAU/snowcourse-crawler/internal/logging"
	"github.com/JakeFAU/snowcourse-crawler/internal/metrics"
	"github.com/JakeFAU/snowcourse-crawler/internal/pipeline"
	"github.com/JakeFAU/snowcourse-crawler/internal/station"
	"github.com/JakeFAU/snowcourse-crawler/internal/storage"
	"github.com/JakeFAU/snowcourse-crawler/internal/storage/gcs"
	"github.com/JakeFAU/snowcourse-crawler/internal/storage/local"
	"github.com/JakeFAU/snowcourse-crawler/internal/storage/memory"
	"github.com/JakeFAU/snowcourse-crawler/internal/telemetry"
)

// App holds the shared services of one process: the logger, the configured
// blob store and the pipeline wired against them.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	store    storage.BlobStore
	pipeline *pipeline.Pipeline
	closers  []func() error
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the configuration the App was built from.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetStorage exposes the configured blob store.
func (a *App) GetStorage() storage.BlobStore {
	return a.store
}

// GetPipeline returns the crawl pipeline.
func (a *App) GetPipeline() *pipeline.Pipeline {
	return a.pipeline
}

// NewApp creates and initializes the services described by cfg.
// It fails fast if any of them cannot be built.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(logging.Config{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return nil, err
	}
	metrics.Init()

	a := &App{cfg: cfg, logger: logger}
	a.store, err = a.newBlobStore(ctx)
	if err != nil {
		return nil, err
	}

	tracer := telemetry.NoopTracer()
	if cfg.Tracing.Enabled {
		tracer, err = a.newTracer(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.HTTP.UserAgent,
		RespectRobots: cfg.HTTP.RespectRobots,
		Timeout:       cfg.RequestTimeout(),
	})
	a.pipeline, err = pipeline.New(
		pipeline.Config{
			Region:     cfg.Source.Region,
			OutputPath: cfg.ObjectPath(),
			Delay:      cfg.Delay(),
		},
		pipeline.Deps{
			Directory:  directory.New(fetcher, cfg.Source.DirectoryURL, logger.Named("directory")),
			Downloader: station.NewDownloader(fetcher, cfg.Source.ReportURL, cfg.Source.Region, logger.Named("fetcher")),
			Store:      a.store,
			IDs:        uuid.New(),
			Clock:      clockwork.NewRealClock(),
			Logger:     logger,
			Tracer:     tracer,
		},
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	logger.Info("application services initialized",
		zap.String("region", cfg.Source.Region),
		zap.String("directory_url", cfg.DirectoryURL()),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Duration("delay", cfg.Delay()),
		zap.Duration("timeout", cfg.RequestTimeout()),
		zap.Bool("tracing", cfg.Tracing.Enabled),
	)
	return a, nil
}

func (a *App) newBlobStore(ctx context.Context) (storage.BlobStore, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendLocal:
		store, err := local.New(local.Config{BaseDir: a.cfg.Storage.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		return store, nil
	case config.BackendGCS:
		client, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{
			Bucket:   a.cfg.Storage.GCSBucket,
			Metadata: map[string]string{"region": a.cfg.Source.Region},
		})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("init gcs storage: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return store, nil
	case config.BackendMemory:
		a.logger.Warn("using in-memory storage, the output table will be discarded on exit")
		return memory.NewBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", a.cfg.Storage.Backend)
	}
}

func (a *App) newTracer(ctx context.Context) (trace.Tracer, error) {
	tp, err := telemetry.InitTracerProvider(ctx, a.cfg.Tracing.ServiceName, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error {
		return tp.Shutdown(context.Background())
	})
	return tp.Tracer(telemetry.TracerName), nil
}

// Close shuts down the services held by the App and flushes the logger.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	a.closers = nil
	// Sync fails on non-file sinks such as /dev/stderr; nothing useful to report.
	_ = a.logger.Sync()
}
