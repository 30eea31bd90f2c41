// Package source reads GTFS feeds.
//
// Feeds arrive as zip archives of header-labelled CSV files. Extract unpacks an
// archive, SnapshotDate derives the feed's effective date from calendar.txt,
// and Open streams one file as reconcile records without loading it whole.
package source
