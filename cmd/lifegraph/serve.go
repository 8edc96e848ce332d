package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	lifegraph "github.com/lifegraph-ai/lifegraph"
	"github.com/lifegraph-ai/lifegraph/pkg/config"
	"github.com/lifegraph-ai/lifegraph/pkg/server"
	"github.com/lifegraph-ai/lifegraph/pkg/telemetry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  `Starts the lifegraph engine with background maintenance and serves the HTTP API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "port to listen on")
	serveCmd.Flags().String("host", "localhost", "host to bind to")
}

func runServe() error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateServerConfig(cfg); err != nil {
		return err
	}

	// Mirror error logs into Parquet for offline analysis.
	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(log.Handler(), cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("failed to initialize error tracking", "error", err)
		} else {
			log = slog.New(parquetHandler)
			slog.SetDefault(log)
		}
	}

	engine, err := lifegraph.New(cfg, lifegraph.Options{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	engine.StartMaintenance()

	srv := server.New(cfg, engine)
	srv.Setup()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	return engine.Close(ctx)
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Persistence.Driver != "file" && cfg.Persistence.Driver != "badger" && cfg.Persistence.Driver != "" {
		return fmt.Errorf("unsupported persistence driver: %s", cfg.Persistence.Driver)
	}
	return nil
}
