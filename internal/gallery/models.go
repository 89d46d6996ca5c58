package gallery

import "fmt"

// Direction is the traversal sense of a paging request.
// Forward moves toward older entries (the next page), Backward toward newer ones.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// step is the index delta that moves one position in this direction through
// a descending-sorted snapshot.
func (d Direction) step() int {
	if d == Backward {
		return -1
	}
	return 1
}

// ParseDirection converts "forward"/"backward" (or "" for forward) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	default:
		return Forward, fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, s)
	}
}

// PromptDirectoryRef identifies one entry in a repo.
// Repo is informational only: it is never part of the on-disk path below the repo root.
//
// Name is the folder name as found on disk. Refs read from a repo always carry
// it; folders written by other tools need not match EntryName(Time, Prompt).
// A ref built by hand may leave it empty.
type PromptDirectoryRef struct {
	Repo   string `json:"repo"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Prompt string `json:"prompt"`
	Name   string `json:"name,omitempty"`
}

// EntryName returns the on-disk directory name of the entry.
func (r PromptDirectoryRef) EntryName() string {
	if r.Name != "" {
		return r.Name
	}
	return EntryName(r.Time, r.Prompt)
}

func (r PromptDirectoryRef) String() string {
	return r.Repo + "/" + r.Date + "/" + r.EntryName()
}

// NextToken is a resume point for paginated traversal. It need not name an
// entry that still exists. Callers must pass it back unmodified.
type NextToken PromptDirectoryRef

// Ref returns the token as an entry reference.
func (t NextToken) Ref() PromptDirectoryRef {
	return PromptDirectoryRef(t)
}

// Entry is one prompt-generation event with the images stored for it.
type Entry struct {
	PromptDirectoryRef
	Path       string   // absolute path of the entry directory
	ImagePaths []string // ascending by file name
}

// Num returns the number of images in the entry.
func (e *Entry) Num() int {
	return len(e.ImagePaths)
}

// GetImagePromptsResult is one page of entries.
// Results are always most-recent-first. NextToken is nil exactly when there is
// nothing further in the requested direction. ErrorMessage is set when the
// page is partial because of a failure.
type GetImagePromptsResult struct {
	Results      []*Entry
	NextToken    *NextToken
	ErrorMessage string
}

// HasError reports whether the page carries an error message.
func (r *GetImagePromptsResult) HasError() bool {
	return r.ErrorMessage != ""
}
