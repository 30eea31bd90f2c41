// Package pipeline imports GTFS snapshot archives into the versioned catalog.
//
// One import:
//
//  1. Fetches the archive from the snapshot bucket when requested.
//  2. Extracts it into a timestamped work dir, removed afterwards.
//  3. Derives the snapshot date from calendar.txt.
//  4. Records the file in igtfs_files.
//  5. Reconciles agencies, routes and stops in that order.
//  6. Stores the per-entity summary and status on the file record.
//
// Dry runs stop after planning and write nothing, the file record included.
package pipeline
