// Package database handles the connection to the monitor history database.
//
// It provides a wrapper around GORM to open either a local SQLite file (the
// default, stored in the per-user Renode directory) or a MySQL server shared by
// several installations.
//
// # Connect
//
// The history database is optional. Connect returns an error that callers log
// as a warning before falling back to in-memory history.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("History database unavailable", zap.Error(err))
//	}
//	hooks.Register("history-db", func() error { return database.Close(db) })
package database
