package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thushan/redis-watcher/internal/util"
	"github.com/thushan/redis-watcher/theme"
)

type Config struct {
	Level      string
	LogDir     string
	Theme      string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	FileOutput bool
}

const (
	DefaultLogOutputName  = "redis-watcher.log"
	DefaultDetailedCookie = "detailed"

	fileTimeFormat = time.RFC3339
)

// New builds the process logger. Humans at a colour terminal get pterm
// output and a PrettyStyledLogger, everything else (containers, pipes,
// systemd) gets JSON and a PlainStyledLogger. With FileOutput set, records
// are also written as JSON to a rotating file in LogDir; the returned
// cleanup closes it.
func New(cfg *Config) (*slog.Logger, StyledLogger, func(), error) {
	level := parseLevel(cfg.Level)
	colour := util.ShouldUseColors()
	palette := theme.GetTheme(cfg.Theme)

	var handler slog.Handler
	if colour {
		handler = ptermHandler(level, palette)
	} else {
		handler = jsonHandler(os.Stdout, level)
	}

	cleanup := func() {}
	if cfg.FileOutput {
		rotator, err := openLogFile(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		handler = &splitHandler{terminal: handler, file: jsonHandler(rotator, level)}
		cleanup = func() {
			_ = rotator.Close()
		}
	}

	log := slog.New(handler)
	if colour {
		return log, NewPrettyStyledLogger(log, palette), cleanup, nil
	}
	return log, NewPlainStyledLogger(log), cleanup, nil
}

func ptermHandler(level slog.Level, palette *theme.Theme) slog.Handler {
	plogger := pterm.DefaultLogger.
		WithLevel(ptermLevel(level)).
		WithWriter(os.Stdout).
		WithFormatter(pterm.LogFormatterColorful).
		WithKeyStyles(map[string]pterm.Style{
			"level": *palette.Info,
			"msg":   *palette.Info,
			"time":  *palette.Muted,
		})
	return pterm.NewSlogHandler(plogger)
}

func jsonHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: plainAttr,
	})
}

func openLogFile(cfg *Config) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create log directory %s: %w", cfg.LogDir, err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, DefaultLogOutputName),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   true,
	}, nil
}

// plainAttr keeps JSON output free of terminal styling: themed strings lose
// their escape codes and arbitrary values are printed with %v
func plainAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.String("timestamp", a.Value.Time().Format(fileTimeFormat))
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); strings.IndexByte(s, '\x1b') >= 0 {
			return slog.String(a.Key, stripAnsiCodes(s))
		}
	case slog.KindAny:
		return slog.String(a.Key, fmt.Sprintf("%v", a.Value.Any()))
	}
	return a
}

// splitHandler feeds the terminal and the log file. Records logged under
// the detailed cookie carry error chains and raw replies and are kept out of
// the terminal.
type splitHandler struct {
	terminal slog.Handler
	file     slog.Handler
}

func (h *splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.terminal.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *splitHandler) Handle(ctx context.Context, record slog.Record) error {
	if !isDetailed(ctx) && h.terminal.Enabled(ctx, record.Level) {
		if err := h.terminal.Handle(ctx, record); err != nil {
			return err
		}
	}
	if !h.file.Enabled(ctx, record.Level) {
		return nil
	}
	return h.file.Handle(ctx, record)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{terminal: h.terminal.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{terminal: h.terminal.WithGroup(name), file: h.file.WithGroup(name)}
}

func isDetailed(ctx context.Context) bool {
	detailed, _ := ctx.Value(DefaultDetailedCookie).(bool)
	return detailed
}

// parseLevel accepts slog's level names plus "warning"; anything it cannot
// read falls back to info
func parseLevel(name string) slog.Level {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "warning") {
		name = "warn"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func ptermLevel(level slog.Level) pterm.LogLevel {
	switch {
	case level < slog.LevelInfo:
		return pterm.LogLevelTrace
	case level < slog.LevelWarn:
		return pterm.LogLevelInfo
	case level < slog.LevelError:
		return pterm.LogLevelWarn
	default:
		return pterm.LogLevelError
	}
}
