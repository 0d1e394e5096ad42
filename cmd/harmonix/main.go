// Package main implements the harmonix CLI for operating on the photo
// namespace: listing and ranking projects, inspecting capture trees, erasing
// subtrees, and minting presigned URLs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/timowlmtn/living-harmonix/internal/config"
	"github.com/timowlmtn/living-harmonix/internal/metrics"
	s3gw "github.com/timowlmtn/living-harmonix/internal/storage/s3"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

var (
	cfgFile string
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "harmonix",
	Short: "Operate on the living-harmonix photo namespace",
	Long: `harmonix inspects and maintains the hierarchical photo namespace stored
in a flat object store. Credentials come from AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY, and AWS_SESSION_TOKEN; everything else from the
config file, HARMONIX_* environment variables, or defaults.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(eraseCmd)
	rootCmd.AddCommand(presignCmd)
	rootCmd.AddCommand(captureCmd)
}

// loadConfig layers defaults, the optional config file, and the environment.
func loadConfig() (*config.Configuration, *slog.Logger, error) {
	cfg := config.NewDefault()
	if cfgFile != "" {
		if err := cfg.LoadFromFile(cfgFile); err != nil {
			return nil, nil, err
		}
	}
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var level slog.Level
	switch cfg.Global.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// newGateway wires the S3 gateway from config and environment credentials.
func newGateway(ctx context.Context) (types.Gateway, *config.Configuration, *slog.Logger, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	creds := types.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	}

	var recorder types.MetricsRecorder
	if cfg.Monitoring.MetricsEnabled {
		collector := metrics.NewCollector()
		recorder = collector
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort)
			logger.Info("serving metrics", "addr", addr)
			if serr := http.ListenAndServe(addr, collector.Handler()); serr != nil {
				logger.Error("metrics server stopped", "error", serr)
			}
		}()
	}

	gw, err := s3gw.New(ctx, &s3gw.Config{
		Bucket:         cfg.Storage.Bucket,
		Region:         cfg.Storage.Region,
		Endpoint:       cfg.Storage.Endpoint,
		ForcePathStyle: cfg.Storage.ForcePathStyle,
		MaxRetries:     cfg.Storage.MaxRetries,
	}, creds, logger, recorder)
	if err != nil {
		return nil, nil, nil, err
	}
	return gw, cfg, logger, nil
}
