package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"paiid/internal/gallery"
)

// MockFile represents a file or directory in the mock filesystem.
type MockFile struct {
	Content     []byte
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are cleaned before use; parents are created implicitly by AddFile and AddDirectory.
type MockFilesystemManager struct {
	files      map[string]*MockFile
	readErrors map[string]error
	reads      map[string]int
}

// NewMockFilesystemManager creates a new mock filesystem containing only "/".
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      map[string]*MockFile{"/": {IsDirectory: true}},
		readErrors: make(map[string]error),
		reads:      make(map[string]int),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	path = filepath.Clean(path)
	m.AddDirectory(filepath.Dir(path))
	m.files[path] = &MockFile{Content: content}
}

// AddDirectory adds a directory and its parents to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	path = filepath.Clean(path)
	for p := path; ; p = filepath.Dir(p) {
		if _, ok := m.files[p]; !ok {
			m.files[p] = &MockFile{IsDirectory: true}
		}
		if p == filepath.Dir(p) {
			return
		}
	}
}

// FailReadDir makes every later ReadDirNames of path return err.
func (m *MockFilesystemManager) FailReadDir(path string, err error) {
	m.readErrors[filepath.Clean(path)] = err
}

// ReadDirCalls returns how many times ReadDirNames was called for path.
func (m *MockFilesystemManager) ReadDirCalls(path string) int {
	return m.reads[filepath.Clean(path)]
}

func (m *MockFilesystemManager) ReadDirNames(path string) ([]string, error) {
	path = filepath.Clean(path)
	m.reads[path]++
	if err, ok := m.readErrors[path]; ok {
		return nil, err
	}

	dir, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !dir.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", path)
	}

	var names []string
	for p := range m.files {
		if p != path && filepath.Dir(p) == path {
			names = append(names, filepath.Base(p))
		}
	}
	// Ascending, so callers cannot rely on the listing already being descending.
	sort.Strings(names)
	return names, nil
}

func (m *MockFilesystemManager) Exists(path string) (bool, error) {
	_, ok := m.files[filepath.Clean(path)]
	return ok, nil
}

func (m *MockFilesystemManager) MkdirAll(path string) error {
	path = filepath.Clean(path)
	for p := path; ; p = filepath.Dir(p) {
		if f, ok := m.files[p]; ok && !f.IsDirectory {
			return fmt.Errorf("not a directory: %s", p)
		}
		if p == filepath.Dir(p) {
			break
		}
	}
	m.AddDirectory(path)
	return nil
}

func (m *MockFilesystemManager) WriteFile(path string, r io.Reader) (int64, error) {
	path = filepath.Clean(path)
	parent, ok := m.files[filepath.Dir(path)]
	if !ok || !parent.IsDirectory {
		return 0, &fs.PathError{Op: "create", Path: path, Err: fs.ErrNotExist}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.files[path] = &MockFile{Content: data}
	return int64(len(data)), nil
}

func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	file, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) RemoveAll(path string) error {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
	return nil
}

// Compile-time check
var _ gallery.FilesystemManager = (*MockFilesystemManager)(nil)
