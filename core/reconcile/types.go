package reconcile

import (
	"fmt"
	"slices"
	"time"
)

// Record is one incoming entity parsed from a snapshot.
type Record struct {
	// NaturalKey is the identifier used by the snapshot (agency_id, route_id, stop_code).
	NaturalKey string

	// Attributes holds the entity's fields keyed by catalog column name.
	Attributes map[string]string

	// Line is the source line the record was read from, for diagnostics.
	Line int
}

// ActiveEntry is the catalog's current version of one entity.
type ActiveEntry struct {
	// ID is the surrogate id of the active row.
	ID int64

	// Attributes holds the identity columns of the active row, normalised to strings.
	Attributes map[string]string

	// ActiveFrom is the date the active row took effect.
	ActiveFrom time.Time
}

// ActiveIndex maps natural keys to the active catalog entry for that key.
type ActiveIndex map[string]ActiveEntry

// EntityProfile describes how one entity type is laid out in the catalog.
type EntityProfile struct {
	// Name is the entity type (agency, route, stop).
	Name string

	// Table is the SCD table holding every version of the entity.
	Table string

	// IDColumn holds the surrogate id.
	IDColumn string

	// KeyColumn holds the natural key.
	KeyColumn string

	// Columns lists the attribute columns written for every new row.
	Columns []string

	// Identity lists the attribute columns that must be equal for a record
	// to keep its surrogate id. It is always a subset of Columns.
	Identity []string
}

// Validate checks that the profile is complete and its identity fields are known columns.
func (p EntityProfile) Validate() error {
	if p.Name == "" || p.Table == "" || p.IDColumn == "" || p.KeyColumn == "" {
		return fmt.Errorf("entity profile %q is incomplete", p.Name)
	}
	for _, field := range p.Identity {
		if !slices.Contains(p.Columns, field) {
			return fmt.Errorf("entity %s: identity field %q is not a column of %s", p.Name, field, p.Table)
		}
	}
	return nil
}

// WithIdentity returns a copy of the profile using the given identity fields.
// An empty list keeps the profile's default identity.
func (p EntityProfile) WithIdentity(fields []string) (EntityProfile, error) {
	if len(fields) == 0 {
		return p, nil
	}
	p.Identity = slices.Clone(fields)
	if err := p.Validate(); err != nil {
		return EntityProfile{}, err
	}
	return p, nil
}

// State is a step of the reconcile state machine.
type State string

const (
	StateLoading     State = "loading"
	StateReconciling State = "reconciling"
	StateCommitting  State = "committing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Summary provides aggregate counts for one entity type's run.
type Summary struct {
	// Incoming is the number of records read from the snapshot.
	Incoming int `json:"incoming"`

	// Matched counts records that kept their existing surrogate id.
	Matched int `json:"matched"`

	// Created counts records that received a new surrogate id.
	Created int `json:"created"`

	// Retired counts active rows closed by this run.
	Retired int `json:"retired"`

	// ActiveBefore is the size of the active set when the run started.
	ActiveBefore int `json:"active_before"`
}

// Plan is the staged outcome of reconciling one snapshot for one entity type.
// It is ready for atomic application and performs no database access itself.
type Plan struct {
	// Entity is the entity type name.
	Entity string

	// EffectiveDate is the snapshot date used for active_from and active_until.
	EffectiveDate time.Time

	// LatestActiveFrom is the most recent active_from of the active set.
	// A snapshot dated before it cannot be applied.
	LatestActiveFrom time.Time

	// NewRows are the rows to append, in source order.
	NewRows []map[string]any

	// InUse is the sorted set of surrogate ids active after this snapshot.
	InUse []int64

	// Retire is the sorted set of active ids absent from InUse.
	Retire []int64

	// Mapping maps this snapshot's natural keys to surrogate ids.
	Mapping map[string]int64

	// Summary holds the planned counts.
	Summary Summary
}

// Options controls how a plan is applied.
type Options struct {
	// DryRun plans without committing.
	DryRun bool

	// Confirmed must be set for a commit to happen.
	Confirmed bool

	// AllowEmpty permits an empty snapshot to retire a non-empty active set.
	AllowEmpty bool

	// MinRecords is the minimum number of incoming records required to
	// commit against a non-empty active set. Values below 1 are treated as 1.
	MinRecords int

	// MaxRetireFraction rejects plans retiring more than this share of the
	// active set. Zero disables the check.
	MaxRetireFraction float64
}

// Result is what one entity type's run hands back to the orchestrator.
type Result struct {
	Entity    string           `json:"entity"`
	State     State            `json:"state"`
	Committed bool             `json:"committed"`
	Mapping   map[string]int64 `json:"-"`
	Summary   Summary          `json:"summary"`
}
