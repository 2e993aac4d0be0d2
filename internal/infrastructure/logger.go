package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"workpulse/internal/config"
)

// Process-wide logger state. The API server builds it once at startup;
// the CLI and tests use NewLogger instead.
var global struct {
	once   sync.Once
	mu     sync.Mutex
	logger *slog.Logger
	file   *os.File
}

// InitializeLogger builds the process logger from cfg and installs it as
// slog's default. Later calls return the first logger unchanged.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	global.once.Do(func() {
		var (
			logger *slog.Logger
			file   *os.File
		)
		logger, file, err = buildLogger(cfg, os.Stdout)
		if err != nil {
			return
		}
		global.mu.Lock()
		global.logger, global.file = logger, file
		global.mu.Unlock()
		slog.SetDefault(logger)
	})
	return GetLogger(), err
}

// NewLogger returns a private logger writing to w. Only the level, format
// and development settings of cfg apply.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	return slog.New(newHandler(cfg, w))
}

// GetLogger returns the process logger, or slog.Default before
// InitializeLogger has run
func GetLogger() *slog.Logger {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.logger == nil {
		return slog.Default()
	}
	return global.logger
}

// CloseLogFile flushes and closes the log file opened for "file" or "both"
// output. It is safe to call when no file is open.
func CloseLogFile() error {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.file == nil {
		return nil
	}
	err := global.file.Close()
	global.file = nil
	return err
}

// ResetLoggerForTesting lets tests call InitializeLogger again
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	global.mu.Lock()
	global.logger = nil
	global.mu.Unlock()
	global.once = sync.Once{}
}

func buildLogger(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, *os.File, error) {
	if strings.EqualFold(cfg.Output, "console") || cfg.Output == "" {
		return NewLogger(cfg, stdout), nil, nil
	}

	file, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	var w io.Writer = file
	if strings.EqualFold(cfg.Output, "both") {
		w = io.MultiWriter(stdout, file)
	}
	return NewLogger(cfg, w), file, nil
}

func newHandler(cfg config.LoggingConfig, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     levelOf(cfg.Level),
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return traceHandler{h}
}

func levelOf(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// traceHandler stamps trace_id from the context onto every record
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}
