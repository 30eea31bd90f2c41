// Package catalog exposes the versioned GTFS catalog over HTTP.
//
// # HTTP Endpoints
//
//   - GET /catalog/:entity : active rows of agency, route or stop (?at=YYYY-MM-DD for a past date).
//   - GET /catalog/:entity/:id : every version sharing the natural key of a surrogate id.
//   - GET /imports : recent snapshot imports with status and summary (?limit=N).
//
// Active listings are cached for server.cache_ttl_seconds.
package catalog
