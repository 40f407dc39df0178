// Package metrics exposes Prometheus collectors for the snow-course crawler.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Station outcomes recorded by ObserveStation.
const (
	StatusOK            = "ok"
	StatusDownloadError = "download_error"
	StatusParseError    = "parse_error"
	StatusNoData        = "no_data"
)

var (
	crawlerStationsTotal          *prometheus.CounterVec
	crawlerRowsTotal              prometheus.Counter
	crawlerBytesTotal             prometheus.Counter
	crawlerRequestDurationSeconds *prometheus.HistogramVec
	crawlerPauseSecondsTotal      prometheus.Counter
	crawlerLastRunSuccess         prometheus.Gauge
	crawlerLastRunTimestamp       prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlerStationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snowcourse_stations_total",
				Help: "Total number of stations processed, labeled by outcome.",
			},
			[]string{"status"},
		)

		crawlerRowsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "snowcourse_rows_total",
				Help: "Total number of long-format rows produced.",
			},
		)

		crawlerBytesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "snowcourse_report_bytes_total",
				Help: "Total number of raw report bytes downloaded.",
			},
		)

		crawlerRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snowcourse_request_duration_seconds",
				Help:    "Histogram of remote request latencies, labeled by endpoint.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"endpoint"},
		)

		crawlerPauseSecondsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "snowcourse_pause_seconds_total",
				Help: "Total time spent pausing between stations.",
			},
		)

		crawlerLastRunSuccess = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "snowcourse_last_run_success",
				Help: "1 when the last run wrote an output table, 0 otherwise.",
			},
		)

		crawlerLastRunTimestamp = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "snowcourse_last_run_timestamp_seconds",
				Help: "Unix time the last run finished.",
			},
		)
	})
}

// ObserveStation increments the station counter for the given outcome.
func ObserveStation(status string) {
	crawlerStationsTotal.WithLabelValues(status).Inc()
}

// ObserveRows adds produced rows.
func ObserveRows(n int) {
	if n > 0 {
		crawlerRowsTotal.Add(float64(n))
	}
}

// ObserveRequest records a remote request against endpoint ("directory" or "report").
func ObserveRequest(endpoint string, duration time.Duration, bytesFetched int) {
	crawlerRequestDurationSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
	if endpoint == "report" && bytesFetched > 0 {
		crawlerBytesTotal.Add(float64(bytesFetched))
	}
}

// ObservePause records time spent between stations.
func ObservePause(d time.Duration) {
	crawlerPauseSecondsTotal.Add(d.Seconds())
}

// ObserveRun records the outcome of a full run.
func ObserveRun(success bool, finished time.Time) {
	if success {
		crawlerLastRunSuccess.Set(1)
	} else {
		crawlerLastRunSuccess.Set(0)
	}
	crawlerLastRunTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
