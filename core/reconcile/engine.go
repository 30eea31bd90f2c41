package reconcile

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
)

// Engine reconciles snapshots of one entity type against a catalog.
//
// A run moves through Loading, Reconciling and Committing and ends in Done
// or Failed. Plan covers the first two states and never writes; Apply
// covers Committing. A failure in any state leaves the catalog untouched.
type Engine struct {
	catalog Catalog
	adapter Adapter
	profile EntityProfile
	logger  *zap.Logger
}

// NewEngine creates an engine for the adapter's entity type.
func NewEngine(catalog Catalog, adapter Adapter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog: catalog,
		adapter: adapter,
		profile: adapter.Profile(),
		logger:  logger.With(zap.String("entity", adapter.Name())),
	}
}

// Profile returns the entity profile the engine reconciles.
func (e *Engine) Profile() EntityProfile {
	return e.profile
}

func (e *Engine) fail(state State, err error) error {
	runsTotal.WithLabelValues(e.profile.Name, string(StateFailed)).Inc()
	e.logger.Error("Reconcile failed", zap.String("state", string(state)), zap.Error(err))
	return &RunError{Entity: e.profile.Name, State: state, Err: err}
}

func (e *Engine) enter(state State) {
	e.logger.Debug("Reconcile state", zap.String("state", string(state)))
}

// Plan loads the active set and matches every incoming record against it.
// The returned plan describes the commit without performing it.
func (e *Engine) Plan(ctx context.Context, effective time.Time, records iter.Seq2[Record, error]) (*Plan, error) {
	if err := e.profile.Validate(); err != nil {
		return nil, e.fail(StateLoading, err)
	}

	e.enter(StateLoading)
	active, err := e.catalog.LoadActive(ctx, e.profile)
	if err != nil {
		return nil, e.fail(StateLoading, err)
	}
	maxID, err := e.catalog.MaxID(ctx, e.profile)
	if err != nil {
		return nil, e.fail(StateLoading, err)
	}
	e.logger.Info("Loaded active set", zap.Int("active", len(active)), zap.Int64("max_id", maxID))

	e.enter(StateReconciling)
	policy := NewPolicy(e.profile)
	alloc := NewAllocator(maxID)
	staging := NewStaging(e.profile, effective)

	for rec, err := range records {
		if err != nil {
			return nil, e.fail(StateReconciling, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, e.fail(StateReconciling, err)
		}
		if staging.Seen(rec.NaturalKey) {
			return nil, e.fail(StateReconciling, fmt.Errorf("%w: %q at line %d", ErrDuplicateKey, rec.NaturalKey, rec.Line))
		}

		if id, ok := policy.Match(rec, active); ok {
			err = staging.Matched(rec.NaturalKey, id)
		} else {
			err = staging.Created(rec.NaturalKey, alloc.Next(), e.adapter.Row(rec))
		}
		if err != nil {
			return nil, e.fail(StateReconciling, err)
		}
	}

	plan := staging.Plan(active)
	e.logger.Info("Planned snapshot",
		zap.Int("incoming", plan.Summary.Incoming),
		zap.Int("matched", plan.Summary.Matched),
		zap.Int("created", plan.Summary.Created),
		zap.Int("retired", plan.Summary.Retired))
	return plan, nil
}

// Check validates a plan against the safety guards in opts.
func (e *Engine) Check(plan *Plan, opts Options) error {
	if plan.EffectiveDate.Before(plan.LatestActiveFrom) {
		return fmt.Errorf("%w: snapshot dated %s, active rows from %s", ErrStaleSnapshot,
			plan.EffectiveDate.Format(time.DateOnly), plan.LatestActiveFrom.Format(time.DateOnly))
	}

	s := plan.Summary
	if s.Incoming == 0 {
		e.logger.Warn("Snapshot has no records", zap.Int("active", s.ActiveBefore))
	}
	if s.ActiveBefore == 0 {
		return nil
	}

	if s.Incoming == 0 {
		if opts.AllowEmpty {
			return nil
		}
		return ErrEmptySource
	}
	if opts.MinRecords > 0 && s.Incoming < opts.MinRecords {
		return fmt.Errorf("%w: %d records, at least %d required", ErrEmptySource, s.Incoming, opts.MinRecords)
	}
	if opts.MaxRetireFraction > 0 {
		share := float64(s.Retired) / float64(s.ActiveBefore)
		if share > opts.MaxRetireFraction {
			return fmt.Errorf("%w: %d of %d (%.2f > %.2f)", ErrRetireThreshold, s.Retired, s.ActiveBefore, share, opts.MaxRetireFraction)
		}
	}
	return nil
}

// Apply commits a plan after checking its guards. A dry run stops before
// committing and reports Done without changes.
func (e *Engine) Apply(ctx context.Context, plan *Plan, opts Options) (*Result, error) {
	result := &Result{
		Entity:  e.profile.Name,
		State:   StateFailed,
		Mapping: plan.Mapping,
		Summary: plan.Summary,
	}

	if err := e.Check(plan, opts); err != nil {
		return result, e.fail(StateReconciling, err)
	}

	if opts.DryRun {
		result.State = StateDone
		e.logger.Info("Dry run, nothing committed")
		return result, nil
	}
	if !opts.Confirmed {
		return result, e.fail(StateCommitting, ErrNotConfirmed)
	}

	e.enter(StateCommitting)
	start := time.Now()
	retired, err := e.catalog.Commit(ctx, e.profile, plan)
	if err != nil {
		return result, e.fail(StateCommitting, err)
	}
	runDuration.WithLabelValues(e.profile.Name).Observe(time.Since(start).Seconds())

	if int(retired) != plan.Summary.Retired {
		e.logger.Warn("Retired count differs from plan",
			zap.Int("planned", plan.Summary.Retired),
			zap.Int64("retired", retired))
	}
	result.Summary.Retired = int(retired)
	result.State = StateDone
	result.Committed = true

	observeCommitted(e.profile.Name, result.Summary)
	runsTotal.WithLabelValues(e.profile.Name, string(StateDone)).Inc()
	e.logger.Info("Committed snapshot",
		zap.Int("matched", result.Summary.Matched),
		zap.Int("created", result.Summary.Created),
		zap.Int("retired", result.Summary.Retired))
	return result, nil
}

// Run plans and applies one snapshot.
func (e *Engine) Run(ctx context.Context, effective time.Time, records iter.Seq2[Record, error], opts Options) (*Result, error) {
	plan, err := e.Plan(ctx, effective, records)
	if err != nil {
		return &Result{Entity: e.profile.Name, State: StateFailed}, err
	}
	return e.Apply(ctx, plan, opts)
}
