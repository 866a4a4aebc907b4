package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/beankit/config"
	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/observability"
	"github.com/kbukum/beankit/version"
)

type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:   "beankit",
		Short: "Walk through a lazily constructed bean registry",
		Long: `Registers a few beans on a fresh manager and shows how accessors observe
replacements, how type checks fail, and how thread-scoped beans stay private
to their thread.

Configuration is read from config.yml and BEANKIT_ environment variables:
  BEANKIT_CONTAINER_INVALIDATION=direct beankit`,
		Version:      version.Get().String(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"config file (default: ./cmd/beankit/config.yml, ./config/config.yml or ./config.yml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "",
		".env file with BEANKIT_ overrides (default: .env)")

	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "beankit %s (%s)\n", info, info.GoVersion)
		},
	}
}

func run(cmd *cobra.Command, opts rootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().String()
	}

	log := logger.NewWithWriter(&cfg.Logging, cmd.ErrOrStderr(), cfg.Name)
	logger.SetGlobalLogger(log)

	shutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	m, err := di.NewManager(di.WithConfig(cfg.Container), di.WithLogger(log))
	if err != nil {
		return fmt.Errorf("creating manager: %w", err)
	}
	return walkthrough(ctx, cmd.OutOrStdout(), m)
}

// initTelemetry installs OTLP tracing and metrics when enabled and returns
// a function flushing them.
func initTelemetry(ctx context.Context, cfg *config.ServiceConfig) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	tp, err := observability.InitTracer(ctx, cfg.Telemetry, cfg.Name, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("initializing tracer: %w", err)
	}
	mp, err := observability.InitMeter(ctx, cfg.Telemetry, cfg.Name, cfg.Version)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("initializing meter: %w", err)
	}

	return func() {
		if err := mp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("meter shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("tracer shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}, nil
}
