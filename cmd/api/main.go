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

	"github.com/timmy/contentfactory/internal/api"
	"github.com/timmy/contentfactory/internal/api/middleware"
	"github.com/timmy/contentfactory/internal/app"
	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/logger"
)

func main() {
	// CONFIG_PATH points at a YAML file in deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	log := app.SetupLogging(cfg.Log)
	defer logger.Sync()

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize: %v", err)
	}
	defer application.Close()

	router := api.SetupRouter(application.Services(), cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logger.Fields{"port": cfg.Server.Port, "mode": cfg.Server.Mode}).
			Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
