// Package todo holds the synchronization engine's domain model: the Todo
// value type, its identity rules, the date-bucket store, the pure
// reorder/complete algebra, and the mutation tracker that guards reads
// against stale network responses.
package todo

import "time"

// DateKeyFormat is the wire and map-key format for calendar dates.
const DateKeyFormat = "2006-01-02"

// Todo is a task assigned to a calendar date.
//
// A virtual todo (IsVirtual true, ID zero) is a projection of a
// recurrence definition computed by the server for display. It has no
// persisted row until its first mutation, at which point the server
// materializes it and every subsequent response carries a real ID.
type Todo struct {
	// ID is the persisted row identity. Zero for virtual occurrences,
	// which the server serializes as null.
	ID int64 `json:"id"`

	Text string `json:"text"`

	// AssignedDate is the bucket the item currently belongs to.
	AssignedDate string `json:"assignedDate"`

	// InstanceDate is the occurrence date for recurring items. It equals
	// AssignedDate unless the item was rolled over or moved.
	InstanceDate string `json:"instanceDate"`

	// Position is the 1-based rank within the item's date bucket.
	Position int `json:"position"`

	// RecurringTodoID references the recurrence definition, zero for
	// one-off items.
	RecurringTodoID int64 `json:"recurringTodoId"`

	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`

	// IsRolledOver is server-computed metadata: the occurrence was
	// carried forward from a prior incomplete day. Read-only here.
	IsRolledOver bool `json:"isRolledOver"`

	IsVirtual bool `json:"isVirtual"`
}

// Identity names a logical todo. Real items are keyed by their persisted
// row ID; virtual occurrences by their recurrence definition plus the
// occurrence date. Exactly one of the two keys is populated.
type Identity struct {
	ID              int64
	RecurringTodoID int64
	InstanceDate    string
}

// RealIdentity keys a persisted row.
func RealIdentity(id int64) Identity {
	return Identity{ID: id}
}

// VirtualIdentity keys an unmaterialized recurrence occurrence.
func VirtualIdentity(recurringTodoID int64, instanceDate string) Identity {
	return Identity{RecurringTodoID: recurringTodoID, InstanceDate: instanceDate}
}

// Identity returns the identity of t.
func (t Todo) Identity() Identity {
	if t.IsVirtual {
		return VirtualIdentity(t.RecurringTodoID, t.InstanceDate)
	}

	return RealIdentity(t.ID)
}

// IsVirtual reports whether the identity keys an unmaterialized occurrence.
func (id Identity) IsVirtual() bool {
	return id.ID == 0
}

// Matches reports whether t is the item this identity names. Row IDs are
// compared first when both sides have one. A virtual identity also
// matches the materialized row sharing its recurrence key, so references
// held across materialization are not orphaned.
func (id Identity) Matches(t Todo) bool {
	if id.ID != 0 && t.ID != 0 {
		return id.ID == t.ID
	}

	if id.RecurringTodoID != 0 && t.RecurringTodoID != 0 {
		return id.RecurringTodoID == t.RecurringTodoID && id.InstanceDate == t.InstanceDate
	}

	return false
}

// SameItem reports whether a and b denote the same logical item: both
// persisted with equal IDs, or both virtual sharing a recurrence key.
func SameItem(a, b Todo) bool {
	if a.ID != 0 && b.ID != 0 {
		return a.ID == b.ID
	}

	if a.IsVirtual && b.IsVirtual {
		return a.RecurringTodoID == b.RecurringTodoID && a.InstanceDate == b.InstanceDate
	}

	return false
}

// EqualContent reports whether a and b are element-wise equal for
// re-render purposes. CompletedAt is deliberately excluded: the client
// stamps it optimistically and the server stamps it again on commit, so
// the two clocks legitimately disagree without the item having changed.
func EqualContent(a, b Todo) bool {
	return a.ID == b.ID &&
		a.Text == b.Text &&
		a.AssignedDate == b.AssignedDate &&
		a.InstanceDate == b.InstanceDate &&
		a.Position == b.Position &&
		a.RecurringTodoID == b.RecurringTodoID &&
		a.IsCompleted == b.IsCompleted &&
		a.IsRolledOver == b.IsRolledOver &&
		a.IsVirtual == b.IsVirtual
}

// EqualBuckets reports whether two buckets are element-wise EqualContent.
func EqualBuckets(a, b []Todo) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !EqualContent(a[i], b[i]) {
			return false
		}
	}

	return true
}
