// Package integrity validates the catalog and the snapshot bucket.
//
// # Checks Provided
//
//   - Structure: the incoming and archive prefixes exist in the snapshot bucket.
//   - Snapshots: incoming archives that have not been archived, i.e. never imported.
//   - Schema: the catalog tables carry every column of the GORM models with a compatible type.
//   - History: at most one active row per natural key and no interval ending before it starts.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/snapshots : Lists pending snapshots.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/history : Runs the history check.
package integrity
