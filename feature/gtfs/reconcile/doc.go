// Package reconcile adapts the GTFS entities (agencies, routes, stops) to the
// generic reconcile engine.
//
// Each adapter declares its catalog profile, parses its GTFS file into records
// and shapes the rows inserted for new versions. Routes reference agencies by
// surrogate id, so the route adapter needs the agency run's natural key map.
//
// Default identity fields:
//
//   - agency: agency_name
//   - route: agency_id, short_name, route_desc
//   - stop: name
//
// Each can be overridden from configuration; overrides must name catalog columns.
package reconcile
