package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Mandy077/TaskAssigner-1/internal/config"
	"github.com/Mandy077/TaskAssigner-1/internal/coordinator"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("meeting-server starting",
		zap.String("listen", cfg.ListenAddr),
		zap.Strings("stunServers", cfg.STUNServers),
		zap.Int("maxRoomSize", cfg.MaxRoomSize),
		zap.Int("sendQueueSize", cfg.SendQueueSize),
	)

	co := coordinator.New(cfg, logger)

	srv := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     co.Handler(),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: websocket connections are long-lived.
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	co.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
