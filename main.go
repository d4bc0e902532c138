package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/pkg/config"
	"github.com/FACorreiaa/saferstays/internal/pkg/logger"
	"github.com/FACorreiaa/saferstays/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Options{
		Level: logger.ParseLevel(cfg.Log.Level),
		File:  cfg.Log.File,
	}, zap.String("service", "saferstays")); err != nil {
		return err
	}
	l := logger.Log
	defer func() { _ = l.Sync() }()

	otelShutdown, err := server.InitObservability("saferstays", cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			l.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(context.Background(), cfg, l)
	if err != nil {
		return err
	}
	defer srv.Close()

	if _, err := srv.SetupRouter(); err != nil {
		return err
	}

	server.StartPprofServer(cfg.PprofAddr, l)

	httpServer := srv.HTTPServer()

	done := make(chan struct{})
	go server.GracefulShutdown(httpServer, l, done)

	l.Info("Server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("session_store", cfg.SessionStore),
		zap.Bool("postgres", cfg.Repositories.Postgres.Enabled),
		zap.Bool("sandbox", cfg.LiteAPI.IsSandbox()))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("Server error", zap.Error(err))
		return err
	}

	<-done
	l.Info("Graceful shutdown complete")

	return nil
}
