// Package server holds the HTTP server configuration.
//
// The catalog API started by the `start` command reads its port, API key and
// listing cache lifetime from this Config, which core/config embeds under the
// "server" section (SERVER_PORT, SERVER_API_KEY, SERVER_CACHE_TTL_SECONDS).
package server
