// Package database handles the connection to the Racktables database and
// schema inspection.
//
// It wraps GORM with the MySQL driver. Connect builds the DSN from Config,
// applies the same timeout to connection setup, reads and writes, and pings
// the server before returning. The handle is a scoped resource: commands
// acquire it once and release it with Close on every exit path.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table. The schema check command uses
// it to verify that the Racktables tables this tool reads and writes have the
// expected columns before a reconciliation run touches them.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
package database
