package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/sports-warehouse/internal/app"
	"github.com/riskibarqy/sports-warehouse/internal/config"
	"github.com/riskibarqy/sports-warehouse/internal/observability"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var code int
	switch cmd := strings.ToLower(strings.TrimSpace(os.Args[1])); cmd {
	case "run":
		code = runOnce(ctx, cfg, logger)
	case "serve":
		code = serve(ctx, cfg, logger)
	default:
		printUsage()
		code = 2
	}
	stop()

	if err := observability.StopPprofServer(pprofServer, logger, shutdownTimeout); err != nil {
		logger.Warn("stop pprof", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Warn("stop pyroscope", "error", err)
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("shutdown uptrace", "error", err)
	}
	cancel()

	if code != 0 {
		_ = logger.Sync()
		os.Exit(code)
	}
}

// runOnce executes a single pipeline run and prints its report to stdout.
func runOnce(ctx context.Context, cfg config.Config, logger *logging.Logger) int {
	pipeline, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		return 1
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("close pipeline", "error", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	report, runErr := pipeline.Service.Run(runCtx)

	payload, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("encode run report", "error", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, string(payload))

	if runErr != nil {
		logger.Error("pipeline run failed", "run_id", report.RunID, "error", runErr)
		return 1
	}
	return 0
}

// serve exposes the run trigger API until SIGINT or SIGTERM.
func serve(ctx context.Context, cfg config.Config, logger *logging.Logger) int {
	pipeline, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		return 1
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("close pipeline", "error", err)
		}
	}()

	srv, handler, err := app.NewHTTPServer(cfg, pipeline.Service, logger)
	if err != nil {
		logger.Error("build http server", "error", err)
		return 1
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	code := 0
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok && err != nil {
			logger.Error("http server failed", "error", err)
			code = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		code = 1
	}
	handler.Wait()

	logger.Info("http server stopped")
	return code
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <run|serve>\n", name)
	fmt.Fprintln(os.Stderr, "  run    execute one pipeline run and print the report")
	fmt.Fprintln(os.Stderr, "  serve  expose the run trigger API on HTTP_ADDR")
}
