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

	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/application"
	"github.com/pep299/american-standard/internal/scheduler"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := application.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	cfg := app.Config
	logger := app.Logger

	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:     app.Handler(),
		ReadTimeout: 30 * time.Second,
		// generation holds the request open for several minutes
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var sched *scheduler.Scheduler
	if cfg.GenerateSchedule != "" {
		sched, err = scheduler.New(cfg.GenerateSchedule, app.Editions, logger)
		if err != nil {
			logger.Fatal("invalid generation schedule", zap.String("schedule", cfg.GenerateSchedule), zap.Error(err))
		}
		sched.Start()
	} else {
		logger.Info("generation schedule disabled")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
