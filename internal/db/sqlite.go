package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"bandly-go/pkg/logger"
)

const sqlitePragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS app_state (
	key TEXT PRIMARY KEY,
	value BLOB,
	updated_at TEXT NOT NULL
);`

// NewSQLite opens the database file at path and creates the app_state table.
func NewSQLite(path string, log logger.Logger) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", path+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Info("db: sqlite ready", "path", path)
	return sqlDB, nil
}
