// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default endpoints of the NRCS National Water and Climate Center.
const (
	DefaultDirectoryURL = "https://wcc.sc.egov.usda.gov/nwcc/snow-course-sites.jsp?state=%s"
	DefaultReportURL    = "https://wcc.sc.egov.usda.gov/reportGenerator/view_csv/customGroupByMonthReport/monthly/" +
		"{station}:{region}:SNOW%7Cid=%22%22%7Cname/POR_BEGIN,POR_END:1,2,3,4,5,6/" +
		"WTEQ::collectionDate,SNWD::value,WTEQ::value"
	DefaultUserAgent = "snowcourse-crawler/1.0 (+https://github.com/JakeFAU/snowcourse-crawler)"
)

// Storage backends accepted by storage.backend.
const (
	BackendLocal  = "local"
	BackendGCS    = "gcs"
	BackendMemory = "memory"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Output  OutputConfig  `mapstructure:"output"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// SourceConfig selects the region and the remote endpoints.
type SourceConfig struct {
	Region       string `mapstructure:"region"`
	DirectoryURL string `mapstructure:"directory_url"`
	ReportURL    string `mapstructure:"report_url"`
}

// HTTPConfig configures the collectors used for every request.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// CrawlerConfig governs pacing between stations.
type CrawlerConfig struct {
	DelaySeconds float64 `mapstructure:"delay_seconds"`
}

// OutputConfig names the combined table artifact.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig sets where the combined table is written.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig controls the end-of-run Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// TracingConfig enables OpenTelemetry spans, logged at debug level.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SNOWCOURSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Source.Region = strings.ToUpper(strings.TrimSpace(cfg.Source.Region))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.region", "CO")
	v.SetDefault("source.directory_url", DefaultDirectoryURL)
	v.SetDefault("source.report_url", DefaultReportURL)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.respect_robots", false)
	v.SetDefault("crawler.delay_seconds", 1)
	v.SetDefault("output.path", "colorado_snow_data.csv")
	v.SetDefault("storage.backend", BackendLocal)
	v.SetDefault("storage.base_dir", ".")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "snowcourse-crawler")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Source.Region == "" {
		return fmt.Errorf("source.region must be set")
	}
	if !strings.Contains(c.Source.DirectoryURL, "%s") {
		return fmt.Errorf("source.directory_url must contain a %%s region placeholder")
	}
	if !strings.Contains(c.Source.ReportURL, "{station}") {
		return fmt.Errorf("source.report_url must contain a {station} placeholder")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Crawler.DelaySeconds < 0 {
		return fmt.Errorf("crawler.delay_seconds must be >= 0")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output.path must be set")
	}
	if c.Tracing.Enabled && strings.TrimSpace(c.Tracing.ServiceName) == "" {
		return fmt.Errorf("tracing.service_name must be set when tracing is enabled")
	}
	switch c.Storage.Backend {
	case BackendLocal:
		if strings.TrimSpace(c.Storage.BaseDir) == "" {
			return fmt.Errorf("storage.base_dir must be set for the local backend")
		}
	case BackendGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set for the gcs backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend %q is not one of local, gcs, memory", c.Storage.Backend)
	}
	return nil
}

// DirectoryURL returns the site directory URL for the configured region.
func (c Config) DirectoryURL() string {
	return fmt.Sprintf(c.Source.DirectoryURL, c.Source.Region)
}

// RequestTimeout converts the HTTP timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Delay converts the inter-station pause into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Crawler.DelaySeconds * float64(time.Second))
}

// ObjectPath joins the storage prefix and the output path.
func (c Config) ObjectPath() string {
	prefix := strings.Trim(c.Storage.Prefix, "/")
	if prefix == "" {
		return c.Output.Path
	}
	return prefix + "/" + strings.TrimLeft(c.Output.Path, "/")
}
