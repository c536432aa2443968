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

	"github.com/medcompare/backend/config"
	httpDelivery "github.com/medcompare/backend/internal/delivery/http"
	"github.com/medcompare/backend/internal/infrastructure/export"
	"github.com/medcompare/backend/internal/infrastructure/logging"
	"github.com/medcompare/backend/internal/infrastructure/pharmapi"
	"github.com/medcompare/backend/internal/infrastructure/store"
	"github.com/medcompare/backend/internal/usecase"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	logger.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"backends":    cfg.Backend.BaseURLs,
	}).Info("Starting MedCompare Backend v1.0.0")

	// Initialize infrastructure dependencies
	client := pharmapi.NewClient(pharmapi.ClientConfig{
		BaseURLs:          cfg.Backend.BaseURLs,
		Timeout:           cfg.Backend.Timeout,
		UserAgent:         cfg.Backend.UserAgent,
		RequestsPerMinute: cfg.Backend.RequestsPerMinute,
		Logger:            logger,
	})

	// Enable debug mode in development environment
	debug := cfg.Server.Environment == "development"
	if debug {
		client.SetDebug(true)
		logger.Debug("backend client debug mode enabled")
	}

	selection := store.NewMemoryStore()
	saved := store.NewMemoryStore()
	preferences := store.NewFileStore(cfg.Preferences.Path, logger)
	logger.WithField("path", cfg.Preferences.Path).Info("source toggles persisted to file")

	// Initialize usecase layer
	preprocessor := usecase.NewQueryPreprocessor(logger, debug)
	searchService := usecase.NewSearchService(client, preferences, selection, pharmapi.Normalizer, preprocessor, logger)
	selectionService := usecase.NewSelectionService(selection, saved, searchService, logger)
	compareService := usecase.NewCompareService(selection, saved, export.NewXLSXExporter())
	sourceService := usecase.NewSourceService(preferences, logger)
	ocrService := usecase.NewOCRService(client, preprocessor)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Search:    searchService,
		Selection: selectionService,
		Compare:   compareService,
		Sources:   sourceService,
		OCR:       ocrService,
	}, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return
	}
	logger.Info("Server exited")
}
