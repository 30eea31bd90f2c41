// Package models contains the GORM models of the versioned GTFS catalog.
//
// Every catalog table keeps all versions of an entity. A row is active while
// active_until is NULL. Surrogate ids (a_id, r_id, s_id) are assigned by the
// reconcile engine, never by the database.
//
//   - Agency: 'igtfs_agencies', keyed by the GTFS agency_id.
//   - Route: 'igtfs_routes', keyed by route_id.
//   - Stop: 'igtfs_stops', keyed by stop_code.
//   - ImportFile: 'igtfs_files', one row per processed archive.
//
// The integrity checks reflect on these models to verify the live schema.
package models
