package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-span-search/api"
	"github.com/gcbaptista/go-span-search/internal/engine"
	"github.com/gcbaptista/go-span-search/internal/metrics"
)

const maxRequestBytes = 10 << 20

func main() {
	// Define command-line flags
	var (
		help          = flag.Bool("help", false, "Show help message")
		version       = flag.Bool("version", false, "Show version information")
		port          = flag.String("port", "8080", "Port to run the server on")
		logFormat     = flag.String("log-format", "text", "Log format: text or json")
		logLevel      = flag.String("log-level", "info", "Log level: debug, info, warn or error")
		searchTimeout = flag.Duration("search-timeout", api.DefaultSearchTimeout, "Maximum duration of a single _search or _spans request")
	)

	flag.Parse()

	if *help {
		fmt.Printf("Go Span Search - positional span queries over multi-valued fields\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                          # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000              # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --log-format json        # Emit structured JSON logs\n", os.Args[0])
		return
	}

	if *version {
		fmt.Printf("Go Span Search v1.0.0\n")
		return
	}

	logger, err := newLogger(*logFormat, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		api.RecoveryMiddleware(logger),
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(logger),
		metrics.Middleware(),
		api.CORSMiddleware(),
		api.RequestSizeLimitMiddleware(maxRequestBytes),
	)

	api.SetupRoutes(router, engine.NewEngine(logger),
		api.WithLogger(logger),
		api.WithSearchTimeout(*searchTimeout),
	)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "port", *port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
