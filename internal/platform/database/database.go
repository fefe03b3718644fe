package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open returns a pooled connection for the configured driver. "postgres"
// uses lib/pq; anything else falls back to the embedded sqlite driver.
func Open(driver, dsn string) (*sql.DB, error) {
	name := "postgres"
	if driver != "postgres" {
		name = "sqlite"
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", name, err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	if name == "sqlite" {
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY under concurrent jobs.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s connection: %w", name, err)
	}

	return db, nil
}
