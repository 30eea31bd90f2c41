// Package middleware groups the Fiber middleware of the catalog server.
//
//   - auth: API key validation (X-API-Key header or api_key query parameter).
//   - rayid: per-request id stored in locals and echoed in the X-Ray-ID header.
package middleware
