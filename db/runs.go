package db

import (
	"fmt"
	"time"
)

// SaveRun records a finished pipeline run
func (db *DB) SaveRun(run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, mode, output_path, batches, requested, skipped, appended, fallbacks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.OutputPath, run.Batches, run.Requested, run.Skipped, run.Appended, run.Fallbacks, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns retrieves the most recent runs first
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	rows, err := db.conn.Query(
		"SELECT id, mode, output_path, batches, requested, skipped, appended, fallbacks, created_at FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Mode, &run.OutputPath, &run.Batches, &run.Requested, &run.Skipped, &run.Appended, &run.Fallbacks, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
