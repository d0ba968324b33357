package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"shipmerge/internal/config"
	"shipmerge/internal/handler"
	"shipmerge/internal/port"
	"shipmerge/internal/repository/postgres"
	"shipmerge/internal/router"
	"shipmerge/internal/service"
	s3storage "shipmerge/internal/storage/s3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Company registry (optional)
	var registry port.CompanyRegistry
	var enricher service.EnrichmentService
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		registry = postgres.NewCompanyRegistryRepo(db)
		enricher = service.NewEnrichmentService(registry, &cfg.Enrichment)
		log.Printf("server: company registry enrichment enabled (%s:%d/%s)", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	}

	// Report archive (optional)
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Printf("server: report archive enabled (bucket %s)", cfg.S3.Bucket)
	}

	// Initialize services
	mergeSvc := service.NewMergeService(&cfg.Merge, enricher)
	reportSvc := service.NewReportService(storage, &cfg.S3)

	// Initialize handlers
	shipmentH := handler.NewShipmentHandler(mergeSvc, reportSvc)
	healthH := handler.NewHealthHandler(registry)

	// Setup router
	r := router.Setup(shipmentH, healthH, cfg.CORS.AllowedOrigins, cfg.Server.MaxBodyMB*1024*1024)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
