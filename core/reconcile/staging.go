package reconcile

import (
	"slices"
	"time"
)

// Staging accumulates the outcome of one reconcile pass before anything is written.
type Staging struct {
	profile   EntityProfile
	effective time.Time

	rows    []map[string]any
	inUse   map[int64]struct{}
	mapping map[string]int64

	incoming int
	matched  int
	sealed   bool
}

// NewStaging creates an empty staging buffer for an entity and snapshot date.
func NewStaging(profile EntityProfile, effective time.Time) *Staging {
	return &Staging{
		profile:   profile,
		effective: dateOnly(effective),
		inUse:     make(map[int64]struct{}),
		mapping:   make(map[string]int64),
	}
}

// Seen reports whether a natural key was already staged.
func (s *Staging) Seen(key string) bool {
	_, ok := s.mapping[key]
	return ok
}

// Matched records that key keeps the active surrogate id.
func (s *Staging) Matched(key string, id int64) error {
	if s.sealed {
		return ErrStagingSealed
	}
	s.incoming++
	s.matched++
	s.inUse[id] = struct{}{}
	s.mapping[key] = id
	return nil
}

// Created stages a new catalog row for key under a freshly allocated id.
// row holds the attribute columns and may carry a typed natural key. The id,
// validity columns and, when absent, the key are added here.
func (s *Staging) Created(key string, id int64, row map[string]any) error {
	if s.sealed {
		return ErrStagingSealed
	}
	full := make(map[string]any, len(row)+4)
	for k, v := range row {
		full[k] = v
	}
	full[s.profile.IDColumn] = id
	if _, ok := full[s.profile.KeyColumn]; !ok {
		full[s.profile.KeyColumn] = key
	}
	full["active_from"] = s.effective
	full["active_until"] = nil

	s.incoming++
	s.rows = append(s.rows, full)
	s.inUse[id] = struct{}{}
	s.mapping[key] = id
	return nil
}

// Plan seals the buffer and returns the staged plan against the given active set.
func (s *Staging) Plan(active ActiveIndex) *Plan {
	s.sealed = true

	inUse := make([]int64, 0, len(s.inUse))
	for id := range s.inUse {
		inUse = append(inUse, id)
	}
	slices.Sort(inUse)

	var retire []int64
	var latest time.Time
	for _, entry := range active {
		if entry.ActiveFrom.After(latest) {
			latest = entry.ActiveFrom
		}
		if _, ok := s.inUse[entry.ID]; !ok {
			retire = append(retire, entry.ID)
		}
	}
	slices.Sort(retire)

	return &Plan{
		Entity:           s.profile.Name,
		EffectiveDate:    s.effective,
		LatestActiveFrom: latest,
		NewRows:          s.rows,
		InUse:            inUse,
		Retire:           retire,
		Mapping:          s.mapping,
		Summary: Summary{
			Incoming:     s.incoming,
			Matched:      s.matched,
			Created:      len(s.rows),
			Retired:      len(retire),
			ActiveBefore: len(active),
		},
	}
}
