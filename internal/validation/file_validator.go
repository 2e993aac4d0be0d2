package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Roster file rejections. Callers match them with errors.Is.
var (
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrFileTooLarge         = errors.New("file exceeds maximum size")
	ErrNotRegularFile       = errors.New("not a regular file")
	ErrTemporaryFile        = errors.New("temporary Excel file")
)

// officeLockPrefix marks the lock files Excel leaves beside open workbooks
const officeLockPrefix = "~$"

// FileValidator vets roster inputs and report output directories for the
// CLI and the upload handler
type FileValidator struct {
	logger     *slog.Logger
	extensions []string
	maxSize    int64
}

// NewFileValidator normalises extensions to lower case with a leading dot.
// maxSize <= 0 disables the size check.
func NewFileValidator(logger *slog.Logger, extensions []string, maxSize int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
		extensions: lo.Map(extensions, func(ext string, _ int) string {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			return ext
		}),
		maxSize: maxSize,
	}
}

func (v *FileValidator) AllowedExtensions() []string {
	return slices.Clone(v.extensions)
}

func (v *FileValidator) allowed(name string) bool {
	return slices.Contains(v.extensions, strings.ToLower(filepath.Ext(name)))
}

func (v *FileValidator) reject(msg, path string, err error) error {
	v.logger.Warn(msg, slog.String("file", path), slog.String("error", err.Error()))
	return err
}

// ValidateFilename checks an upload's name and declared size
func (v *FileValidator) ValidateFilename(name string, size int64) error {
	if !v.allowed(name) {
		return v.reject("Rejected file extension", name,
			fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedExtension,
				strings.ToLower(filepath.Ext(name)), strings.Join(v.extensions, ", ")))
	}
	if v.maxSize > 0 && size > v.maxSize {
		return v.reject("Rejected oversized file", name,
			fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, name, size, v.maxSize))
	}
	return nil
}

// ValidateRosterFile checks that path names a readable regular roster
// file within the limits. Office lock files are refused.
func (v *FileValidator) ValidateRosterFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return v.reject("Roster file missing", path, fmt.Errorf("file %s does not exist", path))
	case err != nil:
		return v.reject("Roster file unreadable", path, fmt.Errorf("failed to stat file %s: %w", path, err))
	case !info.Mode().IsRegular():
		return v.reject("Roster path rejected", path, fmt.Errorf("%s: %w", path, ErrNotRegularFile))
	case strings.HasPrefix(filepath.Base(path), officeLockPrefix):
		return v.reject("Roster path rejected", path, fmt.Errorf("file %s is a %w", path, ErrTemporaryFile))
	}

	if err := v.ValidateFilename(path, info.Size()); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return v.reject("Roster file unreadable", path, fmt.Errorf("file %s is not readable: %w", path, err))
	}
	_ = f.Close()

	v.logger.Debug("Roster file accepted", slog.String("file", path), slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory creates dir if needed and proves it is writable
// with a throwaway probe file
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return v.reject("Output directory unusable", dir,
			fmt.Errorf("failed to create output directory %s: %w", dir, err))
	}

	probe, err := os.CreateTemp(dir, ".workpulse_probe_*")
	if err != nil {
		return v.reject("Output directory unusable", dir,
			fmt.Errorf("output directory %s is not writable: %w", dir, err))
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return nil
}

// ExpandInputs turns CLI arguments into roster paths. A directory expands to
// the roster files directly inside it, sorted by name. Anything else is
// passed through for ValidateRosterFile to judge.
func (v *FileValidator) ExpandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		rosters := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (string, bool) {
			name := e.Name()
			keep := !e.IsDir() && !strings.HasPrefix(name, officeLockPrefix) && v.allowed(name)
			return filepath.Join(arg, name), keep
		})
		if len(rosters) == 0 {
			v.logger.Warn("No roster files found in directory", slog.String("directory", arg))
		}
		out = append(out, rosters...)
	}
	return out, nil
}
