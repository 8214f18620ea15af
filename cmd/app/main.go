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

	"foodmarket/cmd"
	"foodmarket/internal/metrics"
	"foodmarket/internal/platform/observability"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := observability.NewLogger(configs.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, "foodmarket", configs.TracingEnabled, os.Stdout)
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}

	metrics.Register()

	app, err := cmd.NewCompositionRoot(configs, logger)
	if err != nil {
		log.Fatalf("build application: %v", err)
	}

	if err = run(ctx, app, configs.HTTPPort); err != nil {
		logger.Error("application stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = errors.Join(app.Close(), shutdownTracing(shutdownCtx)); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func run(ctx context.Context, app *cmd.CompositionRoot, port string) error {
	srv, err := app.CreateHTTPServer()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	srv.Register(e)
	e.GET("/api/v1/ws", echo.WrapHandler(app.CreateWebSocketHandler()))

	notifier := app.Notifier()
	notifier.Start(ctx)
	defer notifier.Stop()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if relay := app.Relay(); relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
