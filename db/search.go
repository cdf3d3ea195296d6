package db

import (
	"fmt"
	"strings"

	"chat-analyzer/pipeline"
)

// SearchRecords returns records whose text contains term, newest first
func (db *DB) SearchRecords(term string, limit int) ([]pipeline.Record, error) {
	if term == "" {
		return nil, nil
	}

	// Escape LIKE wildcards so the term matches literally
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)

	rows, err := db.conn.Query(`
		SELECT str_time, user, text, message_type, sentiment, confidence, positive_prob, negative_prob
		FROM records
		WHERE text LIKE ? ESCAPE '\'
		ORDER BY str_time DESC, id DESC
		LIMIT ?
	`, "%"+escaped+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	defer rows.Close()

	var results []pipeline.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}

	return results, nil
}
