package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"stayhub/internal/infra/config"
	"stayhub/internal/infra/fixtures"
	grpcserver "stayhub/internal/infra/grpc"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev")
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer app.close(context.Background())

	if err := app.loadFixtures(ctx, cfg); err != nil {
		logger.Warn("listing fixtures load failed", "error", err)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.handlers)
	grpcSrv, grpcHealth := grpcserver.NewServer(logger, &grpcserver.QuoteServer{Queries: app.queries, Logger: logger})

	errs := make(chan error, 4)
	app.startBackground(ctx, errs)

	go func() {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			errs <- err
			return
		}
		logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errs <- err
		}
	}()
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-errs:
		logger.Error("server failed", "error", err)
		exitCode = 1
		stop()
	}

	grpcHealth.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	grpcSrv.GracefulStop()
	logger.Info("stayhub stopped")
	if exitCode != 0 {
		app.close(context.Background())
		os.Exit(exitCode)
	}
}

func (a *application) loadFixtures(ctx context.Context, cfg config.Config) error {
	loader := fixtures.Loader{Bus: a.commands, Logger: a.logger}
	if a.fixtures != nil {
		name := cfg.ListingsFixtures
		if name == "" {
			name = "listings.json"
		}
		_, err := loader.LoadFrom(ctx, a.fixtures, name)
		return err
	}
	path := cfg.ListingsFixtures
	if path == "" {
		path = fixtures.DefaultPath()
	}
	_, err := loader.LoadFrom(ctx, fixtures.Files{}, path)
	return err
}
