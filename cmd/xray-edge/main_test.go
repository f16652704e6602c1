package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/xray-edge-tools/internal/config"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func httpConfig(addr string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Transport = config.TransportHTTP
	cfg.Server.Addr = addr
	return cfg
}

// runWithTimeout fails the test if run does not return in time.
func runWithTimeout(t *testing.T, ctx context.Context, cfg *config.Config) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, newTestLogger()) }()

	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return")
		return nil
	}
}

func TestRun_HTTPStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runWithTimeout(t, ctx, httpConfig("127.0.0.1:0")); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestRun_HTTPListenErrorIsReturned(t *testing.T) {
	err := runWithTimeout(t, context.Background(), httpConfig("127.0.0.1:-1"))
	if err == nil {
		t.Fatal("expected a listen error to be returned to the caller")
	}
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		env       string
		debug     bool
		wantLevel logrus.Level
		wantText  bool
	}{
		{"configured level", "warn", "json", "", false, logrus.WarnLevel, false},
		{"invalid level falls back", "loud", "json", "", false, logrus.InfoLevel, false},
		{"env overrides config", "info", "json", "error", false, logrus.ErrorLevel, false},
		{"invalid env ignored", "warn", "json", "loud", false, logrus.WarnLevel, false},
		{"debug wins", "error", "json", "warn", true, logrus.DebugLevel, true},
		{"text format", "info", "text", "", false, logrus.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XRAY_EDGE_LOG_LEVEL", tt.env)
			cfg := config.DefaultConfig()
			cfg.Logging.Level = tt.level
			cfg.Logging.Format = tt.format

			logger := initLogger(cfg, tt.debug)
			if logger.GetLevel() != tt.wantLevel {
				t.Errorf("level = %s, want %s", logger.GetLevel(), tt.wantLevel)
			}
			_, isText := logger.Formatter.(*logrus.TextFormatter)
			if isText != tt.wantText {
				t.Errorf("text formatter = %v, want %v", isText, tt.wantText)
			}
		})
	}
}
