// Package loader registers the HTTP features of the catalog server.
//
// Each feature implements Feature and mounts its own routes when loaded:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Features are loaded in registration order. Disabled features (for example the
// catalog API without a database) are skipped.
package loader
