package gallery

import "sort"

// FindNextIndex returns the index of the neighbor of reference in
// sortedDescending when moving in dir. The list must be sorted in descending
// order; reference need not be present in it.
//
// Forward yields the first element strictly less than reference. Backward
// yields the element just before the first element not greater than
// reference. ok is false when the list is exhausted in that direction.
func FindNextIndex(reference string, sortedDescending []string, dir Direction) (int, bool) {
	n := len(sortedDescending)
	if dir == Backward {
		i := sort.Search(n, func(i int) bool { return sortedDescending[i] <= reference })
		if i == 0 {
			return 0, false
		}
		return i - 1, true
	}
	i := sort.Search(n, func(i int) bool { return sortedDescending[i] < reference })
	if i >= n {
		return 0, false
	}
	return i, true
}
