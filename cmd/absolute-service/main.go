// cmd/absolute-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"absolute/internal/app"
	"absolute/pkg/config"
	"absolute/pkg/logger"
)

func main() {
	// 1. Load configuration & initialize structured logger.
	cfg := config.Load()
	appLog := logger.New(cfg.Env)
	defer appLog.Sync()

	// 2. Connect optional backends and build the site registry.
	a, err := app.New(context.Background(), cfg, appLog)
	if err != nil {
		appLog.Fatalw("init", "err", err)
	}
	defer a.Close()

	// 3. Middlewares, operational endpoints and pages.
	handler, err := a.Handler()
	if err != nil {
		appLog.Fatalw("routes", "err", err)
	}

	// 4. Configure and start HTTP server asynchronously.
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		appLog.Infow("absolute-service listening", "addr", cfg.HTTPAddr, "sites_enabled", cfg.SitesEnabled, "site_id", cfg.SiteID)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatalw("ListenAndServe", "err", err)
		}
	}()

	// 5. Wait for termination signal (SIGINT/SIGTERM) to begin graceful shutdown.
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	<-stopCh

	// 6. Graceful shutdown with timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	fmt.Println("absolute-service stopped")
}
