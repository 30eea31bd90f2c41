// Package database handles catalog database connections and schema inspection.
//
// It wraps GORM to open PostgreSQL (the production catalog), MySQL or SQLite
// connections from the application's configuration. The handle is explicit:
// commands open it, pass it down, and close it on every exit path.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a catalog table. The integrity feature
// uses it to verify that the SCD tables carry every column the reconcile
// adapters read and write.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
//
//	columns, err := database.GetTableColumns(db, "igtfs_stops")
package database
