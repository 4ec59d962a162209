package todo

import (
	"slices"
	"time"
)

// The functions in this file are the pure bucket algebra: each takes a
// date bucket, returns a fresh slice, and maintains two invariants on
// the result:
//
//   - positions are a contiguous 1..N run in slice order, and
//   - every incomplete item sits before every completed item after a
//     completion-state change (completed items form a trailing block).
//
// Callers apply them optimistically before the matching network write;
// re-applying any of them with identical arguments is a no-op.

// sortBucket orders items by position, breaking ties by row ID so the
// order is stable when the server hands back duplicate positions.
func sortBucket(items []Todo) {
	slices.SortStableFunc(items, func(a, b Todo) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}

		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

// SortedBucket returns a position-sorted copy of items.
func SortedBucket(items []Todo) []Todo {
	out := slices.Clone(items)
	sortBucket(out)

	return out
}

// indexOf returns the slice index of the item id names, or -1.
func indexOf(items []Todo, id Identity) int {
	return slices.IndexFunc(items, func(t Todo) bool {
		return id.Matches(t)
	})
}

// firstCompletedIndex returns the index of the first completed item, or
// len(items) when none is completed.
func firstCompletedIndex(items []Todo) int {
	for i, t := range items {
		if t.IsCompleted {
			return i
		}
	}

	return len(items)
}

// renumber rewrites positions to index+1 over the closed index interval
// [from, to]. Positions outside the interval are untouched; the callers
// only use bounded renumbering where the outside is provably unaffected.
func renumber(items []Todo, from, to int) {
	for i := from; i <= to && i < len(items); i++ {
		if i < 0 {
			continue
		}

		items[i].Position = i + 1
	}
}

// InsertAtEnd appends t to the bucket with position max+1 (1 when empty).
func InsertAtEnd(items []Todo, t Todo) []Todo {
	out := SortedBucket(items)

	maxPos := 0
	for _, existing := range out {
		if existing.Position > maxPos {
			maxPos = existing.Position
		}
	}

	t.Position = maxPos + 1

	return append(out, t)
}

// InsertBeforeCompleted places t immediately before the bucket's first
// completed item (or at the end when none is completed) and renumbers
// the whole bucket 1..N. Used when an item arrives from another date.
func InsertBeforeCompleted(items []Todo, t Todo) []Todo {
	out := SortedBucket(items)
	boundary := firstCompletedIndex(out)

	out = slices.Insert(out, boundary, t)
	renumber(out, 0, len(out)-1)

	return out
}

// MoveToIndex relocates the item id names to targetIndex in the
// position-sorted bucket and renumbers the entire bucket 1..N. Full
// renumbering is deliberate: no duplicate or gap can survive a partial
// failure. The target is clamped to the bucket bounds. An unknown
// identity returns the bucket unchanged.
func MoveToIndex(items []Todo, id Identity, targetIndex int) []Todo {
	out := SortedBucket(items)

	oldIndex := indexOf(out, id)
	if oldIndex < 0 {
		return out
	}

	if targetIndex < 0 {
		targetIndex = 0
	}

	if targetIndex > len(out)-1 {
		targetIndex = len(out) - 1
	}

	moved := out[oldIndex]
	out = slices.Delete(out, oldIndex, oldIndex+1)
	out = slices.Insert(out, targetIndex, moved)

	renumber(out, 0, len(out)-1)

	return out
}

// MarkComplete flips the item to completed, stamps completedAt, and
// relocates it to the head of the completed block: immediately before
// the first already-completed item, or the end of the bucket when none
// exists. Only the interval between the old and new index is
// renumbered. Completing an already-completed item is a no-op.
func MarkComplete(items []Todo, id Identity, completedAt time.Time) []Todo {
	out := SortedBucket(items)

	oldIndex := indexOf(out, id)
	if oldIndex < 0 || out[oldIndex].IsCompleted {
		return out
	}

	boundary := firstCompletedIndex(out)

	out[oldIndex].IsCompleted = true
	at := completedAt
	out[oldIndex].CompletedAt = &at

	moved := out[oldIndex]
	out = slices.Delete(out, oldIndex, oldIndex+1)

	// Removal before the boundary shifts it left by one.
	newIndex := boundary
	if boundary > oldIndex {
		newIndex = boundary - 1
	}

	out = slices.Insert(out, newIndex, moved)

	renumber(out, min(oldIndex, newIndex), max(oldIndex, newIndex))

	return out
}

// MarkUncomplete is the inverse of MarkComplete: the item is cleared and
// relocated to the tail of the incomplete block, immediately before the
// first completed item other than itself. Uncompleting an incomplete
// item is a no-op.
func MarkUncomplete(items []Todo, id Identity) []Todo {
	out := SortedBucket(items)

	oldIndex := indexOf(out, id)
	if oldIndex < 0 || !out[oldIndex].IsCompleted {
		return out
	}

	boundary := len(out)
	for i, t := range out {
		if t.IsCompleted && i != oldIndex {
			boundary = i
			break
		}
	}

	out[oldIndex].IsCompleted = false
	out[oldIndex].CompletedAt = nil

	moved := out[oldIndex]
	out = slices.Delete(out, oldIndex, oldIndex+1)

	newIndex := boundary
	if boundary > oldIndex {
		newIndex = boundary - 1
	}

	out = slices.Insert(out, newIndex, moved)

	renumber(out, min(oldIndex, newIndex), max(oldIndex, newIndex))

	return out
}

// RemoveAndRenumber deletes the item id names and renumbers the
// remainder 1..N. An unknown identity returns the bucket unchanged.
func RemoveAndRenumber(items []Todo, id Identity) []Todo {
	out := SortedBucket(items)

	idx := indexOf(out, id)
	if idx < 0 {
		return out
	}

	out = slices.Delete(out, idx, idx+1)
	renumber(out, 0, len(out)-1)

	return out
}
