package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite archive of classified records
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database connection
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(1) // SQLite works best with single connection
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	// Run migrations
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs database migrations
func (db *DB) migrate() error {
	migrations := []string{
		// Classified chat records, one row per message
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			str_time TEXT NOT NULL,
			user TEXT NOT NULL,
			text TEXT NOT NULL,
			message_type TEXT NOT NULL DEFAULT 'text',
			sentiment INTEGER,
			confidence REAL,
			positive_prob REAL,
			negative_prob REAL,
			imported_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(str_time, user, text)
		)`,

		// Pipeline runs
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			output_path TEXT NOT NULL DEFAULT '',
			batches INTEGER DEFAULT 0,
			requested INTEGER DEFAULT 0,
			skipped INTEGER DEFAULT 0,
			appended INTEGER DEFAULT 0,
			fallbacks INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for the activity queries
		`CREATE INDEX IF NOT EXISTS idx_records_str_time ON records(str_time)`,
		`CREATE INDEX IF NOT EXISTS idx_records_user_time ON records(user, str_time)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	return nil
}

// DBStats represents database statistics
type DBStats struct {
	RecordCount int64
	UserCount   int64
	RunCount    int64
	DBSizeBytes int64
}

// GetStats returns database statistics
func (db *DB) GetStats() (*DBStats, error) {
	stats := &DBStats{}

	err := db.conn.QueryRow("SELECT COUNT(*), COUNT(DISTINCT user) FROM records").Scan(&stats.RecordCount, &stats.UserCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	err = db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&stats.RunCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	// Get database size (page_count * page_size)
	var pageCount, pageSize int64
	err = db.conn.QueryRow("PRAGMA page_count").Scan(&pageCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	err = db.conn.QueryRow("PRAGMA page_size").Scan(&pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}

	stats.DBSizeBytes = pageCount * pageSize

	return stats, nil
}

// Vacuum optimizes the database file
func (db *DB) Vacuum() error {
	_, err := db.conn.Exec("VACUUM")
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
