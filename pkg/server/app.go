package server

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	xhttp "CoinCast/pkg/http"
	applogger "CoinCast/pkg/logger"
)

// Task is a background loop that runs until its context is cancelled.
type Task func(ctx context.Context)

// App encapsulates the entire application lifecycle.
type App struct {
	l          *applogger.Logger
	httpServer *xhttp.Server
	tasks      []Task
}

// New creates a new App instance with all dependencies.
func New(l *applogger.Logger, httpServer *xhttp.Server, tasks ...Task) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{l: l, httpServer: httpServer, tasks: tasks}
}

// Run starts the HTTP server and background tasks and blocks until an
// interrupt, a listen error or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, t := range a.tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			t(ctx)
		}(t)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		stop()
		wg.Wait()
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
		a.l.Error("http server error", applogger.Error(runErr))
	}
	stop()

	a.shutdown()
	wg.Wait()
	a.l.Info("shutdown complete")
	return runErr
}

// shutdown stops the HTTP server. Infrastructure clients are closed by the
// cleanup returned from the injector.
func (a *App) shutdown() {
	a.l.Info("shutting down...")
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
}
