// Package cmd defines and implements the CLI commands for the snowcourse executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/snowcourse-crawler/internal/app"
	"github.com/JakeFAU/snowcourse-crawler/internal/config"
	"github.com/JakeFAU/snowcourse-crawler/internal/pipeline"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetConfig() config.Config
	GetPipeline() *pipeline.Pipeline
}

// newApp is the application factory. It's a variable so tests can swap it.
var newApp = func(ctx context.Context, cfg config.Config) (App, error) {
	return app.NewApp(ctx, cfg)
}

// rootOptions holds flag values that override the loaded configuration.
type rootOptions struct {
	cfgFile string
	region  string
	output  string
	delay   float64
}

// newRootCmd creates the root command. Without a subcommand it runs the full crawl.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "snowcourse",
		Short: "Download NRCS snow-course history for a state into one CSV table.",
		Long: `snowcourse reads the NRCS/NWCC snow-course site directory for a state,
downloads the period-of-record monthly report of every station, reshapes the
per-water-year rows into one row per station, water year and month, and
writes the combined table as a single CSV file.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
		RunE: runCrawlCommand,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.region, "region", "", "two-letter state code (overrides source.region)")
	addCrawlFlags(cmd, opts)

	cmd.AddCommand(newRunCmd(opts), newSitesCmd(), newStationCmd())
	return cmd
}

func addCrawlFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output table path (overrides output.path)")
	cmd.Flags().Float64Var(&opts.delay, "delay", 0, "seconds to pause between stations (overrides crawler.delay_seconds)")
}

// load reads the config file and environment, then applies explicitly set flags.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Source.Region = strings.ToUpper(strings.TrimSpace(o.region))
	}
	if flags.Changed("output") {
		cfg.Output.Path = o.output
	}
	if flags.Changed("delay") {
		cfg.Crawler.DelaySeconds = o.delay
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func resolveApp(ctx context.Context) (App, error) {
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point. It exits 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
