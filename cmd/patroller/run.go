package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/logging"
	"github.com/wikibots/redirect-patroller/internal/mediawiki"
	"github.com/wikibots/redirect-patroller/internal/observability"
	"github.com/wikibots/redirect-patroller/internal/patroller"
	"github.com/wikibots/redirect-patroller/internal/replica"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var envFile string
	var opts patroller.RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch unreviewed redirects, publish the report and patrol",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.LoadCredentials(envFile); err != nil {
				return err
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}
			return runPatrol(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load credentials from this env file")
	cmd.Flags().BoolVar(&opts.Dry, "dry", false, "Publish the report and print it without patrolling")
	cmd.Flags().BoolVar(&opts.Verbose, "log", false, "Log the decision for every candidate")

	return cmd
}

func runPatrol(ctx context.Context, cfg *config.Config, opts patroller.RunOptions) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Establishing connection to the replicas", zap.String("host", cfg.Replica.Host))
	source, err := replica.Open(cfg.Replica, cfg.Credentials, logger.Named("replica"))
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	client, err := mediawiki.New(cfg.Wiki, logger.Named("wiki"))
	if err != nil {
		return err
	}
	logger.Info("Logging in to bot account", zap.String("user", cfg.Credentials.WikiUsername))
	session, err := client.Login(ctx, cfg.Credentials.WikiUsername, cfg.Credentials.WikiPassword)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(context.Background()); err != nil {
			logger.Warn("logout failed", zap.Error(err))
		}
	}()

	p, err := patroller.New(cfg, source, session, logger)
	if err != nil {
		return err
	}

	if cfg.Logging.DecisionLog != "" {
		decisions, closer, err := logging.OpenDecisionLog(cfg.ResolvePath(cfg.Logging.DecisionLog))
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		p.SetDecisionLogger(decisions)
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	p.SetMetrics(metrics)

	_, runErr := p.Run(ctx, opts)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.ResolvePath(cfg.Metrics.Textfile)); err != nil {
			logger.Warn("metrics textfile write failed", zap.Error(err))
		}
	}
	return runErr
}
