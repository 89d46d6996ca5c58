package gallery

import "time"

// EventKind names an operation recorded in the activity journal.
type EventKind string

const (
	EventSwitchRepo EventKind = "switch_repo"
	EventGenerate   EventKind = "generate"
	EventDelete     EventKind = "delete"
	EventArchive    EventKind = "archive"
	EventRestore    EventKind = "restore"
)

// Event is one journal record. Ref is the zero value for repo-level events.
type Event struct {
	ID          string
	OperationID string
	Kind        EventKind
	Ref         PromptDirectoryRef
	Detail      string
	CreatedAt   time.Time
}

// Journal records what the manager did to the tree. It is an audit trail
// only: pagination never consults it.
type Journal interface {
	// Record stores ev. OperationID is filled in by the journal when empty.
	Record(ev *Event) error

	// Recent returns up to limit events, newest first.
	Recent(limit int) ([]*Event, error)

	// Close releases the journal's resources.
	Close() error
}
