// Package sink provides output destinations for rendered schema files.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// OutputSink receives rendered file content. Implementations must be
// safe for concurrent use: callers may fan out one write per document
// entry.
type OutputSink interface {
	// WriteFile writes content at a slash-separated relative path. The
	// sink determines the actual location.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes beneath a root directory on an afero
// filesystem. Writes are atomic: content is staged in a temp file and
// renamed into place.
type FilesystemSink struct {
	// Fs is the backing filesystem.
	Fs afero.Fs

	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default 0644).
	Mode os.FileMode

	// Overwrite controls behavior for existing files. When false,
	// writing an existing path fails.
	Overwrite bool
}

// NewFilesystemSink returns a sink writing beneath root on the host
// filesystem, overwriting existing files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Fs: afero.NewOsFs(), Root: root, Mode: 0o644, Overwrite: true}
}

// NewMemSink returns a sink over a fresh in-memory filesystem, for
// tests and dry runs. Read results back with ReadFile.
func NewMemSink() *FilesystemSink {
	return &FilesystemSink{Fs: afero.NewMemMapFs(), Root: ".", Mode: 0o644, Overwrite: true}
}

// WriteFile writes content at path, creating parent directories as
// needed. Safe for concurrent use: every call stages through its own
// temp file.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(path))
	dir := filepath.Dir(full)
	if err := s.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := afero.TempFile(s.Fs, dir, ".typeglot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	discard := func() { _ = s.Fs.Remove(tmpPath) }

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		discard()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		discard()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.Fs.Chmod(tmpPath, mode); err != nil {
		discard()
		return fmt.Errorf("set file mode: %w", err)
	}

	if err := ctx.Err(); err != nil {
		discard()
		return err
	}

	if !s.Overwrite {
		exists, err := afero.Exists(s.Fs, full)
		if err != nil {
			discard()
			return fmt.Errorf("stat %q: %w", path, err)
		}
		if exists {
			discard()
			return fmt.Errorf("file already exists: %q", path)
		}
	}
	if err := s.Fs.Rename(tmpPath, full); err != nil {
		discard()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ReadFile returns the content written at path.
func (s *FilesystemSink) ReadFile(path string) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return afero.ReadFile(s.Fs, filepath.Join(s.Root, filepath.FromSlash(path)))
}

// ValidatePath checks whether a path is valid for output. Paths must be
// relative, use / as separator, contain no .. components, and be clean
// (no ./, no duplicate or trailing /).
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) {
		return errors.New("absolute paths not allowed")
	}
	// Windows drive prefixes count as absolute even on Unix.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}
	if strings.Contains(path, "..") {
		return errors.New("path traversal not allowed")
	}
	cleaned := filepath.Clean(filepath.ToSlash(path))
	if cleaned != filepath.ToSlash(path) {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}
