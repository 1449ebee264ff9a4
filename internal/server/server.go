// Package server runs the Echo instance for the lifetime of the process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/threetier/backend/internal/config"
	"github.com/threetier/backend/internal/queue"
)

// Run binds cfg.Addr(), serves e until ctx is cancelled, then drains it
// within cfg.ShutdownTimeout. The "started" event is published only once the
// listener is bound; the "stopping" event shares the shutdown budget so a
// slow broker cannot delay the drain past it.
func Run(ctx context.Context, e *echo.Echo, cfg config.Config, pub queue.Publisher) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}
	e.Listener = ln
	addr := ln.Addr().String()

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()
	log.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("listening")

	instance, _ := os.Hostname()
	announce := func(ctx context.Context, kind string) {
		ev := queue.NewLifecycleEvent(kind, cfg.Queue.Service, instance, addr, cfg.Env)
		if err := pub.Publish(ctx, ev); err != nil {
			log.WithFields(log.Fields{"event": kind, "error": err}).Warn("lifecycle event not published")
		}
	}

	startCtx, cancelStart := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	announce(startCtx, queue.EventStarted)
	cancelStart()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	announce(shutdownCtx, queue.EventStopping)
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
