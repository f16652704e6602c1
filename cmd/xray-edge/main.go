package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/xray-edge-tools/internal/config"
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/server"
	"github.com/ironsheep/xray-edge-tools/internal/service"
	"github.com/ironsheep/xray-edge-tools/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("xray-edge %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Canny backend: %s\n", imaging.CannyBackend)
			return
		case "--help", "-h", "help":
			fmt.Println("xray-edge - fuzzy edge detection and segmentation for X-ray images")
			fmt.Println()
			fmt.Println("Usage: xray-edge [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v      Print version information")
			fmt.Println("  --help, -h         Print this help message")
			fmt.Println("  --config <path>    YAML configuration file (default xray-edge.yaml)")
			fmt.Println("  --debug            Enable debug logging")
			fmt.Println("  --http <addr>      Serve the REST API on addr instead of MCP over stdio")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  XRAY_EDGE_LOG_LEVEL=debug    Override the configured log level")
			fmt.Println()
			fmt.Println("Without --http the server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	configPath := flag.String("config", "xray-edge.yaml", "YAML configuration file")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	httpAddr := flag.String("http", "", "Serve the REST API on this address")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *httpAddr != "" {
		cfg.Server.Transport = config.TransportHTTP
		cfg.Server.Addr = *httpAddr
	}

	logger := initLogger(cfg, *debugMode)
	logger.WithFields(logrus.Fields{
		"version":   Version,
		"commit":    GitCommit,
		"transport": cfg.Server.Transport,
		"canny":     imaging.CannyBackend,
	}).Info("Starting xray-edge")

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).Error("Server error")
		os.Exit(1)
	}

	logger.Info("Shutting down")
}

// run wires the store, analyzer and batch runner into the configured
// transport and blocks until it stops. The HTTP transport also stops on
// SIGINT/SIGTERM or when ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	st := store.New(cfg.Store.Capacity)
	analyzer := service.NewAnalyzer(cfg.Pipeline, st, logger)
	runner := service.NewRunner(analyzer, cfg.Batch.Workers, cfg.Batch.MaxEntries, logger)

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := server.NewHTTPHandler(analyzer, runner, cfg.Server.MaxUploadBytes, logger)
		return server.ListenAndServe(ctx, cfg.Server.Addr, handler, logger)
	default:
		return server.New(analyzer, runner, logger).Run()
	}
}

// initLogger writes to stderr since stdout carries the MCP protocol.
// Debug mode uses the text formatter, otherwise the configured format.
func initLogger(cfg *config.Config, debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if env := os.Getenv("XRAY_EDGE_LOG_LEVEL"); env != "" {
		if l, err := logrus.ParseLevel(env); err == nil {
			level = l
		}
	}
	if debugMode {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if debugMode || cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
