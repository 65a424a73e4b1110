package main

import (
	"database/sql"
	"log"
	"os"
	"path"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/adapters"
	"github.com/trsst/client/pkg/new/ports"
)

// newSeenEntries keeps seen entries in memory unless a database path is
// configured. The returned db is nil for the in-memory storage.
func newSeenEntries(dbPath string) (ports.SeenEntries, *sql.DB, error) {
	if dbPath == "" {
		return adapters.NewMemorySeenEntryStorage(), nil, nil
	}

	// Create empty dir if not exists
	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.Printf("[INFO] unable to initialize SEEN_DB directory at: %s. Error: %v", dir, err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error opening the seen entries database")
	}
	log.Printf("[INFO] database opened at %s", dbPath)

	storage := adapters.NewSqliteSeenEntryStorage(db)
	if err := storage.Migrate(); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "cannot migrate schema")
	}

	return storage, db, nil
}
