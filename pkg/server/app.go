// Package server owns the application lifecycle: HTTP surface, scheduler,
// and graceful teardown of infrastructure clients.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CoinScope/internal/scheduler"
	"CoinScope/pkg/cache"
	pkgch "CoinScope/pkg/clickhouse"
	"CoinScope/pkg/config"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	sched      *scheduler.Scheduler
	cacheSvc   cache.Service
	chClient   *pkgch.Client
	logger     *applogger.Logger
	httpServer *xhttp.Server
}

// New creates an App instance with all dependencies.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	cacheSvc cache.Service,
	chClient *pkgch.Client,
	logger *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		handler:  handler,
		sched:    sched,
		cacheSvc: cacheSvc,
		chClient: chClient,
		logger:   logger,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.sched.Start(); err != nil {
		return err
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("service started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Int("symbols", len(a.cfg.Universe.Symbols)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the scheduler first so no refresh starts mid-teardown, then
// drains HTTP and closes infrastructure clients.
func (a *App) shutdown() error {
	a.sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
