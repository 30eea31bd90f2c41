package reconcile

import (
	"iter"
	"strconv"

	"transit-catalog/core/reconcile"
	"transit-catalog/feature/gtfs/source"
)

// EntityAdapter is a reconcile adapter that also knows its GTFS file.
type EntityAdapter interface {
	reconcile.Adapter

	// FileName returns the GTFS file holding the entity.
	FileName() string

	// Required lists the columns that must be present in the file header.
	Required() []string

	// Parse converts one GTFS row into a record.
	Parse(row source.Row) (reconcile.Record, error)
}

// Records streams the records of an adapter's file in an extracted feed.
func Records(a EntityAdapter, dir string) iter.Seq2[reconcile.Record, error] {
	return source.Open(dir, a.FileName(), a.Required(), a.Parse)
}

// canonicalInt renders an integer the way the catalog returns it.
func canonicalInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// mustInt parses an attribute already validated by Parse.
func mustInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// nullable maps an empty attribute to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableInt maps an empty attribute to NULL and anything else to an integer.
func nullableInt(s string) any {
	if s == "" {
		return nil
	}
	return mustInt(s)
}
