package reconcile

import (
	"time"
)

// Adapter defines the entity-specific half of a reconcile run.
// Each adapter knows its catalog layout and how to shape a catalog row
// from an incoming record (e.g., agencies, routes, stops).
type Adapter interface {
	// Name returns the entity type handled by this adapter (e.g., "agency").
	Name() string

	// Profile returns the catalog layout and identity fields of the entity.
	Profile() EntityProfile

	// Row builds the column map inserted for a new version of rec.
	// The engine adds the id and validity columns itself, and the natural
	// key as text unless the row already carries it.
	Row(rec Record) map[string]any
}

// Policy decides whether an incoming record is the same entity as an active catalog row.
// Two versions match when their natural keys are equal and every identity
// attribute is byte-for-byte equal. A policy never modifies catalog rows.
type Policy struct {
	Identity []string
}

// NewPolicy returns the matching policy for an entity profile.
func NewPolicy(profile EntityProfile) Policy {
	return Policy{Identity: profile.Identity}
}

// Match returns the active surrogate id to reuse for rec, if any.
func (p Policy) Match(rec Record, index ActiveIndex) (int64, bool) {
	entry, ok := index[rec.NaturalKey]
	if !ok {
		return 0, false
	}
	for _, field := range p.Identity {
		if rec.Attributes[field] != entry.Attributes[field] {
			return 0, false
		}
	}
	return entry.ID, true
}

// Allocator hands out fresh surrogate ids above the catalog maximum.
// It is owned by a single run and is not safe for concurrent use.
type Allocator struct {
	last int64
}

// NewAllocator seeds an allocator with the highest id ever used by the table.
// An empty table starts at 1.
func NewAllocator(maxID int64) *Allocator {
	if maxID < 0 {
		maxID = 0
	}
	return &Allocator{last: maxID}
}

// Next returns the next unused surrogate id.
func (a *Allocator) Next() int64 {
	a.last++
	return a.last
}

// Last returns the most recently allocated id, or the seed if none was allocated.
func (a *Allocator) Last() int64 {
	return a.last
}

// dateOnly truncates t to a calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
