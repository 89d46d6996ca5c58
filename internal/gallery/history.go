package gallery

import "fmt"

// History returns the most recent journal events, newest first.
func (m *RepoManager) History(limit int) ([]*Event, error) {
	if m.journal == nil {
		return nil, nil
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidArgument, limit)
	}
	events, err := m.journal.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return events, nil
}
