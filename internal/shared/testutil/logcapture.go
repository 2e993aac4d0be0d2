package testutil

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log entry with its attributes flattened.
// Attributes added through Logger.With are included; groups become
// dotted keys.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is a slog.Handler that records everything logged through it
type LogCapture struct {
	store  *logStore
	attrs  []slog.Attr
	prefix string
	t      testing.TB
}

// NewTestLogger returns a logger that captures every record at any level
func NewTestLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	h := &LogCapture{store: &logStore{}, t: t}
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *LogCapture) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(attrs, h.prefix, a)
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup implements slog.Handler
func (h *LogCapture) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func addAttr(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(dst, p, ga)
		}
		return
	}
	dst[prefix+a.Key] = v.Any()
}

// Records returns a copy of everything captured so far
func (h *LogCapture) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return slices.Clone(h.store.records)
}

// Find returns the first record at level whose message contains message
func (h *LogCapture) Find(level slog.Level, message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// Count returns the number of captured records
func (h *LogCapture) Count() int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return len(h.store.records)
}

// Reset discards captured records
func (h *LogCapture) Reset() {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = nil
}

// AssertLogged fails t unless a record at level contains message, and
// returns that record's attributes
func AssertLogged(t testing.TB, h *LogCapture, level slog.Level, message string) map[string]any {
	t.Helper()
	r, ok := h.Find(level, message)
	if !ok {
		t.Errorf("expected %s log containing %q", level, message)
		for _, rec := range h.Records() {
			t.Logf("  captured [%s] %s %v", rec.Level, rec.Message, rec.Attrs)
		}
		return nil
	}
	return r.Attrs
}

// AssertNoErrors fails t if anything was logged at error level
func AssertNoErrors(t testing.TB, h *LogCapture) {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
