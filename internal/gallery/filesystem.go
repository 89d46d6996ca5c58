package gallery

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"sort"
)

// FilesystemManager isolates every filesystem access of the gallery so the
// iterator and manager can run against an in-memory tree in tests.
// Implementations must return errors wrapping fs.ErrNotExist for missing paths.
type FilesystemManager interface {
	// ReadDirNames returns the names of the immediate children of path in no
	// particular order.
	ReadDirNames(path string) ([]string, error)

	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// WriteFile atomically writes the contents of r to path and returns the
	// number of bytes written.
	WriteFile(path string, r io.Reader) (int64, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// RemoveAll removes path and everything below it. Missing paths are not an error.
	RemoveAll(path string) error
}

// ListChildNamesDescending lists the children of path sorted descending by
// name. This order is newest-first for both date folders and entry folders.
// A missing path is reported as ErrNotFound.
func ListChildNamesDescending(fsys FilesystemManager, path string) ([]string, error) {
	names, err := fsys.ReadDirNames(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// listChildNamesAscending is ListChildNamesDescending in ascending order.
func listChildNamesAscending(fsys FilesystemManager, path string) ([]string, error) {
	names, err := ListChildNamesDescending(fsys, path)
	if err != nil {
		return nil, err
	}
	slices.Reverse(names)
	return names, nil
}
