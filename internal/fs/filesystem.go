package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"paiid/internal/gallery"
)

// OSFilesystemManager is the real filesystem implementation of gallery.FilesystemManager.
// Names matching its ignore patterns are hidden from directory listings.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the real filesystem.
// ignorePatterns are glob patterns matched against child names; nil uses DefaultIgnorePatterns.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	if ignorePatterns == nil {
		ignorePatterns = DefaultIgnorePatterns
	}
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// ReadDirNames returns the names of the children of path that are not ignored.
func (m *OSFilesystemManager) ReadDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	kept := names[:0]
	for _, name := range names {
		if m.ignore.Match(name) {
			continue
		}
		kept = append(kept, name)
	}
	return kept, nil
}

// Exists reports whether path exists.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat path: %w", err)
}

// MkdirAll creates path and any missing parents.
func (m *OSFilesystemManager) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFile writes r to path using a temp file in the same directory and a
// rename, so readers never see a partial image.
func (m *OSFilesystemManager) WriteFile(path string, r io.Reader) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return 0, fmt.Errorf("writing data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return written, nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// RemoveAll removes path and everything below it.
func (m *OSFilesystemManager) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Compile-time check that OSFilesystemManager implements gallery.FilesystemManager interface
var _ gallery.FilesystemManager = (*OSFilesystemManager)(nil)
