package gallery

import (
	"errors"
	"fmt"
	"slices"
)

// GetImages returns up to count entries starting after token in direction dir.
// A nil token starts at the newest entry (Forward) or the oldest (Backward).
//
// Failures never escape as errors: the entries collected so far are returned
// with ErrorMessage set.
//
// Token conventions:
//   - Forward: the token is the last entry of the page; the next page starts
//     right after it.
//   - Backward: the token is the first entry of the next page and is
//     re-included by the next Backward call when it still exists.
//
// Results are most-recent-first in both directions.
func (m *RepoManager) GetImages(count int, token *NextToken, dir Direction) *GetImagePromptsResult {
	result := &GetImagePromptsResult{Results: []*Entry{}}

	if count < 1 {
		result.ErrorMessage = fmt.Sprintf("%v: count must be at least 1, got %d", ErrInvalidArgument, count)
		return result
	}
	if err := m.requireRepo(); err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	var start *PromptDirectoryRef
	if token != nil {
		ref := token.Ref()
		if err := ValidateRef(ref); err != nil {
			result.ErrorMessage = fmt.Sprintf("getting images: %v", err)
			return result
		}
		start = &ref
	}

	it, err := NewDirectoryIterator(m.fsys, m.RepoPath(), start, dir, m.logger)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("getting images: %v", err)
		return result
	}

	var (
		entries   []*Entry
		failed    error
		failedRef PromptDirectoryRef
		exhausted bool
	)

	if dir == Backward && start != nil {
		entry, err := m.resolveEntry(*start)
		switch {
		case err == nil:
			entries = append(entries, entry)
		case errors.Is(err, ErrNotFound):
			m.logger.Debug("backward token no longer exists", "entry", start.String())
		default:
			failed, failedRef = err, *start
		}
	}

	for failed == nil && len(entries) < count {
		ref, ok := it.Advance()
		if !ok {
			exhausted = true
			break
		}
		entry, err := m.resolveEntry(ref)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				m.logger.Warn("skipping vanished entry", "entry", ref.String())
				continue
			}
			failed, failedRef = err, ref
			break
		}
		entries = append(entries, entry)
	}

	switch {
	case failed != nil:
		m.logger.Error("page incomplete", "entry", failedRef.String(), "error", failed)
		result.ErrorMessage = fmt.Sprintf("getting images: reading %s: %v", failedRef.String(), failed)
		result.NextToken = retryToken(dir, start, entries, failedRef)
	case exhausted:
		// nothing further in this direction
	default:
		// Look one entry ahead so the token is nil exactly when nothing follows.
		if next, ok := m.peekExisting(it); ok {
			if dir == Backward {
				result.NextToken = tokenFor(next)
			} else {
				result.NextToken = tokenFor(entries[len(entries)-1].PromptDirectoryRef)
			}
		}
	}

	if dir == Backward {
		slices.Reverse(entries)
	}
	result.Results = append(result.Results, entries...)

	m.logger.Debug("page collected", "direction", dir.String(), "requested", count, "returned", len(result.Results))
	return result
}

// GetLatestEntry returns the newest entry of the selected repo.
// Errors are logged and reported as no entry.
func (m *RepoManager) GetLatestEntry() (*Entry, bool) {
	res := m.GetImages(1, nil, Forward)
	if res.HasError() {
		m.logger.Warn("loading latest entry failed", "error", res.ErrorMessage)
		return nil, false
	}
	if len(res.Results) == 0 {
		return nil, false
	}
	return res.Results[0], true
}

// peekExisting advances it to the next entry that is still on disk. Entries
// that fail to read for another reason count as present; the next page
// reports them.
func (m *RepoManager) peekExisting(it *DirectoryIterator) (PromptDirectoryRef, bool) {
	for {
		ref, ok := it.Advance()
		if !ok {
			return PromptDirectoryRef{}, false
		}
		if _, err := m.resolveEntry(ref); errors.Is(err, ErrNotFound) {
			m.logger.Warn("skipping vanished entry", "entry", ref.String())
			continue
		}
		return ref, true
	}
}

// retryToken returns a token that makes the same call resume at the entry
// that failed.
func retryToken(dir Direction, start *PromptDirectoryRef, entries []*Entry, failedRef PromptDirectoryRef) *NextToken {
	if dir == Backward {
		return tokenFor(failedRef)
	}
	if len(entries) > 0 {
		return tokenFor(entries[len(entries)-1].PromptDirectoryRef)
	}
	if start != nil {
		return tokenFor(*start)
	}
	return nil
}

func tokenFor(ref PromptDirectoryRef) *NextToken {
	t := NextToken(ref)
	return &t
}
