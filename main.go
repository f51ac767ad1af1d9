package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/gameroom-backend/internal"
	"github.com/rocketscienceinc/gameroom-backend/internal/config"
)

// main wires configuration and logging together and hands control to the
// application loop. Any panic on the way up is reported instead of crashing
// with a bare stack trace.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := loadConfig()
	logger := newLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// loadConfig reads config.yml from the working directory.
func loadConfig() *config.Config {
	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, "config.yml"))
}

// newLogger builds the process-wide JSON logger at the configured level.
func newLogger(conf *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if conf.LogLevel == "debug" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
