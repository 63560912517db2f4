package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opencivic/assessing-api/internal/config"
	"github.com/opencivic/assessing-api/internal/database"
	"github.com/opencivic/assessing-api/internal/egis"
	"github.com/opencivic/assessing-api/internal/handlers"
	"github.com/opencivic/assessing-api/internal/logger"
	"github.com/opencivic/assessing-api/internal/middleware"
	"github.com/opencivic/assessing-api/internal/repository"
	"github.com/opencivic/assessing-api/internal/services"
	"github.com/opencivic/assessing-api/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting assessing API server", map[string]interface{}{
		"version": version,
		"env":     cfg.Server.Env,
		"port":    cfg.Server.Port,
	})

	resolver, err := config.LoadFiscal(cfg.Server.FiscalConfigPath)
	if err != nil {
		log.Fatal("Failed to load fiscal configuration", err, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, nil)
	}
	defer db.Close()

	formStore, err := storage.NewMinioStore(ctx, storage.Config{
		Endpoint:  cfg.ObjectStore.Endpoint,
		AccessKey: cfg.ObjectStore.AccessKey,
		SecretKey: cfg.ObjectStore.SecretKey,
		Bucket:    cfg.ObjectStore.Bucket,
		UseSSL:    cfg.ObjectStore.UseSSL,
	})
	if err != nil {
		log.Fatal("Failed to connect to object store", err, nil)
	}

	egisClient := egis.NewClient(egis.ClientConfig{
		BaseURL:     cfg.EGIS.BaseURL,
		PageSize:    cfg.EGIS.PageSize,
		MaxAttempts: cfg.EGIS.MaxAttempts,
	}, log)
	aggregator := egis.NewAggregator(egisClient, log)

	formRepo := repository.NewFormRepository(db.Pool)

	propertyService := services.NewPropertyService(aggregator, resolver, log)
	phaseService := services.NewPhaseService(resolver, log)
	formService := services.NewFormService(formRepo, formStore, 0, log)

	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env, version)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	phaseHandler := handlers.NewPhaseHandler(phaseService)
	formHandler := handlers.NewFormHandler(formService)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", healthHandler.Info)
		v1.GET("/parcels/:pid", propertyHandler.GetParcel)
		v1.GET("/phases", phaseHandler.GetPhases)
		v1.GET("/forms/:pid/:formType", formHandler.GetForm)
		v1.POST("/forms/:pid/:formType", formHandler.RegisterForm)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", err, nil)
	}

	log.Info("Server stopped", nil)
}
