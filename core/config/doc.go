// Package config loads the transit catalog configuration.
//
// Values come from environment variables, optionally seeded from a .env file.
// Every field declares its default in a `default` struct tag, and nested keys
// map to upper-case environment names joined by underscores
// (reconcile.stop_identity -> RECONCILE_STOP_IDENTITY).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, listing cache TTL
//   - Database: driver (postgres, mysql, sqlite) and connection details
//   - Storage: S3/MinIO credentials, snapshot bucket and prefixes
//   - Log: level and format
//   - Reconcile: snapshot guards, batch size, identity overrides
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Database.Driver)
package config
