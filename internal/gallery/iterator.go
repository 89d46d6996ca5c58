package gallery

import (
	"fmt"
	"path/filepath"
)

// cursor is a position inside one descending snapshot.
// A positioned cursor knows its index and steps in O(1). An unpositioned
// cursor only knows the name it points at (a bookmark that may not even be in
// the snapshot) and has to binary-search for its neighbor.
type cursor struct {
	positioned bool
	index      int
	name       string
}

func positionedAt(index int, name string) cursor {
	return cursor{positioned: true, index: index, name: name}
}

func unpositionedAt(name string) cursor {
	return cursor{name: name}
}

// beforeFirst positions a cursor one step before the first element of an
// n-element snapshot in direction dir.
func beforeFirst(n int, dir Direction) cursor {
	if dir == Backward {
		return positionedAt(n, "")
	}
	return positionedAt(-1, "")
}

// next returns the index of the neighbor of c within names.
func (c cursor) next(names []string, dir Direction) (int, bool) {
	if !c.positioned {
		return FindNextIndex(c.name, names, dir)
	}
	i := c.index + dir.step()
	if i < 0 || i >= len(names) {
		return 0, false
	}
	return i, true
}

// DirectoryIterator walks the entries of one repo one at a time, in a fixed
// direction, across the two levels date -> time_prompt.
//
// The date listing is snapshotted once at construction and the entry listing
// each time the cursor enters a date. Snapshots are never refreshed, so an
// iterator can go stale if the tree changes underneath it. Create a new
// iterator to observe new dates.
//
// A DirectoryIterator is not safe for concurrent use.
type DirectoryIterator struct {
	fsys     FilesystemManager
	rootPath string
	repo     string
	dir      Direction
	logger   Logger

	dates   []string
	date    cursor
	entries []string
	entry   cursor

	hasEntry  bool
	exhausted bool
}

// NewDirectoryIterator creates an iterator over the repo at rootPath.
// With a nil start the first Advance returns the first entry in dir.
// Otherwise the iterator is seeded at start, which does not have to exist,
// and the first Advance returns its neighbor in dir.
// It fails with ErrNotFound when rootPath does not exist.
func NewDirectoryIterator(fsys FilesystemManager, rootPath string, start *PromptDirectoryRef, dir Direction, logger Logger) (*DirectoryIterator, error) {
	if logger == nil {
		logger = NewNopLogger()
	}

	dates, err := ListChildNamesDescending(fsys, rootPath)
	if err != nil {
		return nil, fmt.Errorf("snapshotting dates: %w", err)
	}

	it := &DirectoryIterator{
		fsys:     fsys,
		rootPath: rootPath,
		repo:     filepath.Base(filepath.Clean(rootPath)),
		dir:      dir,
		logger:   logger,
		dates:    dates,
	}

	if start == nil {
		it.date = beforeFirst(len(dates), dir)
		it.entry = beforeFirst(0, dir)
		return it, nil
	}

	it.date = unpositionedAt(start.Date)
	it.entries = it.loadBookmarkEntries(start.Date)
	it.entry = unpositionedAt(start.EntryName())
	it.hasEntry = true
	return it, nil
}

// Direction returns the fixed traversal direction.
func (it *DirectoryIterator) Direction() Direction {
	return it.dir
}

// Advance moves to the next entry and returns it. ok is false once the repo
// is exhausted; every later call returns false without touching the filesystem.
func (it *DirectoryIterator) Advance() (PromptDirectoryRef, bool) {
	for !it.exhausted {
		if !it.step() {
			it.exhaust()
			break
		}
		if ref, ok := it.Current(); ok {
			return ref, true
		}
		it.logger.Warn("skipping malformed entry", "date", it.date.name, "name", it.entry.name)
	}
	return PromptDirectoryRef{}, false
}

// Current returns the entry the cursor points at without moving it.
func (it *DirectoryIterator) Current() (PromptDirectoryRef, bool) {
	if it.exhausted || !it.hasEntry {
		return PromptDirectoryRef{}, false
	}
	entryTime, prompt, ok := ParseEntryName(it.entry.name)
	if !ok {
		return PromptDirectoryRef{}, false
	}
	return PromptDirectoryRef{
		Repo:   it.repo,
		Date:   it.date.name,
		Time:   entryTime,
		Prompt: prompt,
		Name:   it.entry.name,
	}, true
}

// step moves the cursor to the next entry name, entering further dates as
// needed and skipping dates with no readable entries. It reports false when
// the date snapshot is exhausted.
func (it *DirectoryIterator) step() bool {
	if i, ok := it.entry.next(it.entries, it.dir); ok {
		it.entry = positionedAt(i, it.entries[i])
		it.hasEntry = true
		return true
	}

	for {
		i, ok := it.date.next(it.dates, it.dir)
		if !ok {
			return false
		}
		it.date = positionedAt(i, it.dates[i])
		it.entries = it.loadEntries(it.date.name)
		if len(it.entries) == 0 {
			continue
		}

		first := 0
		if it.dir == Backward {
			first = len(it.entries) - 1
		}
		it.entry = positionedAt(first, it.entries[first])
		it.hasEntry = true
		return true
	}
}

func (it *DirectoryIterator) exhaust() {
	it.exhausted = true
	it.hasEntry = false
	it.date = cursor{}
	it.entries = nil
	it.entry = cursor{}
}

// loadEntries snapshots the entries of a date taken from the date snapshot.
// An unreadable listing does not end the traversal: the date counts as empty.
func (it *DirectoryIterator) loadEntries(date string) []string {
	names, err := ListChildNamesDescending(it.fsys, filepath.Join(it.rootPath, date))
	if err != nil {
		it.logger.Warn("treating date as empty", "date", date, "error", fmt.Errorf("%w: %w", ErrTraversalRead, err))
		return nil
	}
	return names
}

// loadBookmarkEntries snapshots the entries of a bookmarked date, which may
// legitimately not exist.
func (it *DirectoryIterator) loadBookmarkEntries(date string) []string {
	exists, err := it.fsys.Exists(filepath.Join(it.rootPath, date))
	if err != nil {
		it.logger.Warn("treating bookmarked date as empty", "date", date, "error", fmt.Errorf("%w: %w", ErrTraversalRead, err))
		return nil
	}
	if !exists {
		return nil
	}
	return it.loadEntries(date)
}
