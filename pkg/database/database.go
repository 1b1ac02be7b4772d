package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"shelftrack/pkg/logger"
)

// Open connects to the SQLite database at path. Foreign keys are enforced
// and a busy timeout keeps concurrent request transactions from failing
// immediately on the writer lock.
func Open(path string, log logger.Logger) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// SQLite allows a single writer; one connection sidesteps SQLITE_BUSY
	// races between pooled connections.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not reach database: %w", err)
	}

	log.Info("Database connection established", map[string]interface{}{"path": path})

	return db, nil
}
