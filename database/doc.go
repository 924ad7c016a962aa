// Package database opens the sqlite file behind the run journal.
//
// It wraps GORM with the project's logger, bounded connection retries and
// transaction helpers. The journal is the only user; it owns the schema.
//
//	db, err := database.Open(ctx, database.Config{Path: "/data/journal.db"}, log)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
package database
