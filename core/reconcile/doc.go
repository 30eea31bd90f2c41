// Package reconcile implements slowly changing dimension (type 2) reconciliation
// of catalog snapshots.
//
// Each entity type (agency, route, stop) lives in one table where every row is a
// version carrying active_from and active_until. A snapshot is reconciled by:
//
//  1. Loading the active rows and the highest surrogate id ever used.
//  2. Matching every incoming record by natural key and identity fields. A match
//     keeps its surrogate id; anything else gets a new id from the allocator.
//  3. Committing in one transaction: active rows whose id is not in use are
//     closed with the snapshot date and the new rows are appended.
//
// History is append-only. Only active_until is ever written after insert, and
// surrogate ids are never reused, even for retired rows.
//
// # Usage
//
//	catalog := reconcile.NewGormCatalog(db, 500)
//	engine := reconcile.NewEngine(catalog, adapter, logger)
//	plan, err := engine.Plan(ctx, snapshotDate, records)
//	...
//	result, err := engine.Apply(ctx, plan, reconcile.Options{Confirmed: true})
//
// Entity-specific parsing and row shaping live behind the Adapter interface.
package reconcile
