package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/snowcourse-crawler/internal/app"
	"github.com/JakeFAU/snowcourse-crawler/internal/config"
	"github.com/JakeFAU/snowcourse-crawler/internal/nwcctest"
	"github.com/JakeFAU/snowcourse-crawler/internal/storage/local"
	"github.com/JakeFAU/snowcourse-crawler/internal/storage/memory"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Logging.Development = false
	cfg.Logging.Level = "error"
	cfg.Storage.BaseDir = t.TempDir()
	return cfg
}

func TestNewAppLocalBackend(t *testing.T) {
	t.Parallel()

	a, err := app.NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.NotNil(t, a.GetLogger())
	assert.NotNil(t, a.GetPipeline())
	assert.IsType(t, &local.BlobStore{}, a.GetStorage())
	assert.Equal(t, "CO", a.GetConfig().Source.Region)
}

func TestNewAppMemoryBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendMemory
	a, err := app.NewApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.IsType(t, &memory.BlobStore{}, a.GetStorage())
}

func TestNewAppRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Storage.Backend = "s3"
	_, err := app.NewApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestNewAppRejectsBadLogLevel(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Logging.Level = "loud"
	_, err := app.NewApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestAppRunsPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	srv := nwcctest.NewServer(t,
		nwcctest.Site{ID: "05K08", Name: "Berthoud Summit", Latitude: "39.80", Longitude: "-105.78", County: "Clear Creek",
			Report: nwcctest.Report("05K08", "2020,01/02,30,7.5,02/01,40,10.1,03/01,50,14.0,04/01,55,17.2,05/01,35,12.0,,,")},
	)
	cfg := testConfig(t)
	cfg.Source.DirectoryURL = srv.DirectoryURL()
	cfg.Source.ReportURL = srv.ReportURL()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Crawler.DelaySeconds = 0

	a, err := app.NewApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	res, err := a.GetPipeline().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.WithData)
	assert.Equal(t, 5, res.Rows)

	store := a.GetStorage().(*memory.BlobStore)
	_, ok := store.Object("colorado_snow_data.csv")
	assert.True(t, ok)
}

func TestNewAppWithTracing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendMemory
	cfg.Tracing.Enabled = true

	a, err := app.NewApp(context.Background(), cfg)
	require.NoError(t, err)
	a.Close()
}
