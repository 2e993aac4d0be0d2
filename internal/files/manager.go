package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ReportSuffix is appended to the input's base name to name its report
const ReportSuffix = "_productivity_report"

// Manager provides report file operations under a single output directory
type Manager struct {
	root   string
	logger *slog.Logger

	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewManager creates a manager rooted at dir
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		root:     dir,
		logger:   logger.With(slog.String("component", "files")),
		reserved: make(map[string]struct{}),
	}
}

// Root returns the output directory
func (m *Manager) Root() string {
	return m.root
}

// ReportName derives the report file name for an input:
// "data/march.xlsx" with ext "pdf" becomes "march_productivity_report.pdf".
func ReportName(input, ext string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "roster"
	}
	return base + ReportSuffix + "." + strings.TrimPrefix(ext, ".")
}

// Reserve returns name, or name with a numeric suffix when it was already
// reserved in this run or already exists on disk. Safe for concurrent use.
func (m *Manager) Reserve(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 2; m.taken(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	m.reserved[candidate] = struct{}{}
	return candidate
}

func (m *Manager) taken(name string) bool {
	if _, ok := m.reserved[name]; ok {
		return true
	}
	return m.FileExists(name)
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// EnsureDirectory creates the output directory if needed
func (m *Manager) EnsureDirectory() error {
	if err := os.MkdirAll(m.root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", m.root, err)
	}
	return nil
}

// maxWriteAttempts bounds how often WriteUnique moves on to a fresh name
const maxWriteAttempts = 100

// WriteFile writes data to path through a temporary file in the same
// directory and returns the final location. An existing file is never
// replaced: the error then wraps os.ErrExist.
func (m *Manager) WriteFile(path string, data []byte) (string, error) {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close %s: %w", fullPath, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	// Link fails on an existing target where Rename would replace it
	err = os.Link(tmpName, fullPath)
	os.Remove(tmpName)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("refusing to overwrite %s: %w", fullPath, os.ErrExist)
	}
	if err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	m.logger.Info("Report written",
		slog.String("path", fullPath),
		slog.Int("size_bytes", len(data)))

	return fullPath, nil
}

// WriteUnique reserves name and writes data under it. When another writer
// creates the reserved file first, the next free name is used instead.
func (m *Manager) WriteUnique(name string, data []byte) (string, error) {
	for range maxWriteAttempts {
		path, err := m.WriteFile(m.Reserve(name), data)
		if !errors.Is(err, os.ErrExist) {
			return path, err
		}
		m.logger.Debug("Report name taken, retrying", slog.String("name", name))
	}
	return "", fmt.Errorf("no free file name for %s after %d attempts: %w", name, maxWriteAttempts, os.ErrExist)
}

// resolvePath keeps relative paths under the root; absolute paths pass through
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.root, path)
}
