package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/docker/go-units"

	"github.com/thushan/redis-watcher/internal/app"
	"github.com/thushan/redis-watcher/internal/config"
	"github.com/thushan/redis-watcher/internal/logger"
	"github.com/thushan/redis-watcher/internal/version"
	"github.com/thushan/redis-watcher/pkg/format"
	"github.com/thushan/redis-watcher/pkg/nerdstats"
)

func runWatcher(ctx context.Context, opts *Options, out io.Writer) error {
	startTime := time.Now()
	version.PrintVersionInfo(false, out)

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logInstance, styledLogger, cleanup, err := logger.New(loggerConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	defer cleanup()
	slog.SetDefault(logInstance)

	styledLogger.Info("Initialising", "version", version.Version, "pid", os.Getpid(), "config", configName(cfg))

	application, err := app.New(cfg, styledLogger)
	if err != nil {
		logger.FatalWithLogger(logInstance, "Failed to create application", "error", err)
	}

	if err := application.Start(ctx); err != nil {
		logger.FatalWithLogger(logInstance, "Failed to start application", "error", err)
	}

	if cfg.Filename != "" {
		watchConfig(ctx, cfg.Filename, styledLogger)
	}

	var runErr error
	select {
	case <-ctx.Done():
		styledLogger.Info("Shutdown signal received")
	case err := <-application.Errors():
		runErr = err
		styledLogger.Error("Status server failed, shutting down", "error", err)
	}

	if err := application.Stop(context.Background()); err != nil {
		styledLogger.Error("Error during shutdown", "error", err)
	}

	reportProcessStats(styledLogger, startTime)

	styledLogger.Info("Redis watcher has shutdown", "uptime", units.HumanDuration(time.Since(startTime)))
	return runErr
}

// watchConfig reports edits to the config file. Changes are validated straight
// away but only applied on restart.
func watchConfig(ctx context.Context, path string, log logger.StyledLogger) {
	onChange := func() {
		if _, err := config.Load(path); err != nil {
			log.Warn("Config file changed but is invalid", "file", path, "error", err)
			return
		}
		log.Info("Config file changed, restart to apply", "file", path)
	}
	onError := func(err error) {
		log.Warn("Config watcher error", "error", err)
	}
	if err := config.Watch(ctx, path, onChange, onError); err != nil {
		log.Warn("Unable to watch config file", "file", path, "error", err)
	}
}

func reportProcessStats(log logger.StyledLogger, startTime time.Time) {
	runtime.GC()
	stats := nerdstats.Snapshot(startTime)

	log.Info("Process Memory Stats",
		"heap_alloc", units.BytesSize(float64(stats.HeapAlloc)),
		"heap_inuse", units.BytesSize(float64(stats.HeapInuse)),
		"heap_released", units.BytesSize(float64(stats.HeapReleased)),
		"stack_inuse", units.BytesSize(float64(stats.StackInuse)),
		"total_alloc", units.BytesSize(float64(stats.TotalAlloc)),
		"live_objects", stats.LiveObjects(),
	)

	if stats.NumGC > 0 {
		log.Info("Garbage Collection Stats",
			"num_gc_cycles", stats.NumGC,
			"last_gc", stats.LastGC.Format(time.RFC3339),
			"total_gc_time", format.Duration(stats.TotalGCTime),
			"avg_gc_pause", format.Duration(stats.AverageGCPause()),
		)
	}

	log.Info("Runtime Stats",
		"goroutines", stats.NumGoroutines,
		"goroutine_health", stats.GoroutineHealth(),
		"go_version", stats.GoVersion,
		"gomaxprocs", stats.GOMAXPROCS,
		"uptime", format.Duration(stats.Uptime),
	)
}

func loggerConfig(cfg *config.Config) *logger.Config {
	return &logger.Config{
		Level:      cfg.Logging.Level,
		FileOutput: cfg.Logging.FileOutput,
		LogDir:     cfg.Logging.LogDir,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Theme:      cfg.Logging.Theme,
	}
}

func configName(cfg *config.Config) string {
	if cfg.Filename == "" {
		return "defaults"
	}
	return cfg.Filename
}
