package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/handler"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
	"github.com/thermalytics/thermoinsights/backend/report"
	"github.com/thermalytics/thermoinsights/backend/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "analysis_endpoint", cfg.Analysis.Endpoint)

	if cfg.Session.Secret == "" {
		// tokens are invalidated on restart along with the sessions
		cfg.Session.Secret = uuid.New().String()
		slog.Warn("session.secret not set, using a random secret")
	}

	savers, err := buildSavers(cfg)
	if err != nil {
		slog.Error("failed to initialize report export", "error", err)
		os.Exit(1)
	}

	analyzer := service.NewAnalysisService(&cfg.Analysis)
	exporter := service.NewExporter(report.NewLayout(&cfg.Report), cfg.Report.Filename, savers...)
	store := service.NewSessionStore(&cfg.Session)

	sessionHandler := handler.NewSessionHandler(cfg, store, analyzer, exporter)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(cfg, sessionHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
		// ?wait=true holds the response for the whole analysis
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.Analysis.Timeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	store.CloseAll(ctx)

	slog.Info("server exited gracefully")
}

// loadConfig falls back to defaults when the file does not exist
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}

func buildSavers(cfg *config.Config) ([]service.Saver, error) {
	var savers []service.Saver

	if cfg.Export.Dir != "" {
		savers = append(savers, service.FileSaver{Dir: cfg.Export.Dir, ByKey: true})
		slog.Info("reports will be written to disk", "directory", cfg.Export.Dir)
	}

	if cfg.Export.Minio {
		minioSvc, err := service.NewMinioService(&cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MINIO service: %w", err)
		}
		if err := minioSvc.EnsureBucket(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to ensure MINIO bucket: %w", err)
		}
		savers = append(savers, service.NewMinioSaver(minioSvc))
		slog.Info("reports will be archived to MINIO", "bucket", cfg.Minio.Bucket)
	}

	return savers, nil
}
