// Package database handles database connections and schema verification.
//
// It wraps GORM to open either a MySQL or a SQLite store from the application's
// configuration. The store holds the reconciliation engine's own records: room stays,
// the lock registry, common-area code bindings and room-block code bindings.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the database
// within the configured timeout.
//
// # Schema Verification
//
// Migrate runs AutoMigrate and then checks, through the schema inspector, that every
// mapped column exists. A partially migrated table fails startup instead of failing
// the first reconciliation run.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	err = database.Migrate(db, &stays.Stay{}, &locks.Lock{})
package database
