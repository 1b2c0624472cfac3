// Package providers contains dependency injection providers for the Relay server.
package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/relaychat/relay-server/internal/config"
	"github.com/relaychat/relay-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// LogLevel holds the mutable log level shared between the logger and the
// config watcher.
type LogLevel struct {
	*slog.LevelVar
}

// ProvideLogLevel provides the runtime-adjustable log level.
func ProvideLogLevel(i do.Injector) (*LogLevel, error) {
	cfg := do.MustInvoke[*config.Config](i)

	level := &slog.LevelVar{}
	level.Set(logger.ParseLevel(cfg.Logger.Level))
	return &LogLevel{LevelVar: level}, nil
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	level := do.MustInvoke[*LogLevel](i)

	log := logger.New(logger.Config{
		Level:       level.LevelVar,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Relay Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}

// ConfigWatcherHandle wraps the config watcher with its context for lifecycle management.
type ConfigWatcherHandle struct {
	*config.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ConfigWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideConfigWatcher watches the .env file and hot-reloads the log level.
// A missing .env file is not an error; the watcher is simply disabled.
func ProvideConfigWatcher(i do.Injector) (*ConfigWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	level := do.MustInvoke[*LogLevel](i)

	watcher, err := config.NewWatcher(cfg.App.EnvFile, log.Logger, func() {
		raw, ok := config.ReadLogLevel(cfg.App.EnvFile)
		if !ok {
			return
		}
		newLevel := logger.ParseLevel(raw)
		if newLevel == level.Level() {
			return
		}
		level.Set(newLevel)
		log.Info("log level changed", "level", raw)
	})
	if err != nil {
		log.Warn("config watcher unavailable, log level hot reload disabled",
			"path", cfg.App.EnvFile,
			"error", err,
		)
		return &ConfigWatcherHandle{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	watcher.Start(ctx)

	log.Info("config watcher started", "path", cfg.App.EnvFile)

	return &ConfigWatcherHandle{Watcher: watcher, cancel: cancel}, nil
}
