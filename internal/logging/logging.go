// Package logging provides component-tagged slog loggers writing to a
// rotating file under the deskpin data directory. Components grab their
// logger once at package init; Init may run later and re-routes every
// logger already handed out.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component names used to tag log records so a single log file stays greppable.
const (
	CompEngine    = "engine"
	CompLayout    = "layout"
	CompDiscovery = "discovery"
	CompChrome    = "chrome"
	CompTmux      = "tmux"
	CompStore     = "store"
	CompUI        = "ui"
	CompConfig    = "config"
)

var (
	mu      sync.RWMutex
	sink    slog.Handler = slog.NewTextHandler(io.Discard, nil)
	closer  io.Closer
	verbose bool
)

// Init routes all loggers to a rotating file under dir. Safe to call more
// than once; later calls replace the destination.
func Init(dir string, debug bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "deskpin.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = lj
	verbose = debug
	sink = slog.NewTextHandler(lj, &slog.HandlerOptions{Level: level})
	return nil
}

// InitStderr routes all loggers to stderr. Used by --debug foreground runs.
func InitStderr(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	mu.Lock()
	defer mu.Unlock()
	verbose = debug
	sink = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
}

// ForComponent returns a logger tagged with the given component name. The
// returned logger follows any later Init re-routing.
func ForComponent(comp string) *slog.Logger {
	return slog.New(&dynamicHandler{}).With("comp", comp)
}

// Debug reports whether debug logging was requested at Init time.
func Debug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// Close flushes and closes the underlying log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	sink = slog.NewTextHandler(io.Discard, nil)
	return err
}

// dynamicHandler forwards to the current sink so loggers created before
// Init still end up in the right place.
type dynamicHandler struct {
	attrs  []slog.Attr
	groups []string
}

func current() slog.Handler {
	mu.RLock()
	defer mu.RUnlock()
	return sink
}

func (h *dynamicHandler) resolve() slog.Handler {
	target := current()
	for _, g := range h.groups {
		target = target.WithGroup(g)
	}
	if len(h.attrs) > 0 {
		target = target.WithAttrs(h.attrs)
	}
	return target
}

func (h *dynamicHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return current().Enabled(ctx, level)
}

func (h *dynamicHandler) Handle(ctx context.Context, rec slog.Record) error {
	return h.resolve().Handle(ctx, rec)
}

func (h *dynamicHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dynamicHandler{
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups: h.groups,
	}
}

func (h *dynamicHandler) WithGroup(name string) slog.Handler {
	return &dynamicHandler{
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}
