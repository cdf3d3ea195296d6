package db

import (
	"database/sql"
	"fmt"
	"time"

	"chat-analyzer/chat"
	"chat-analyzer/pipeline"
	"chat-analyzer/sentiment"
)

// ImportRecords inserts records inside one transaction. Rows already in the
// archive (same time, user and text) are ignored, so importing the same
// checkpoint twice is harmless. It returns the number of new rows.
func (db *DB) ImportRecords(records []pipeline.Record) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO records (str_time, user, text, message_type, sentiment, confidence, positive_prob, negative_prob)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		var class sql.NullInt64
		var confidence, positive, negative sql.NullFloat64
		if res := rec.Sentiment; res != nil {
			class = sql.NullInt64{Int64: int64(res.Class), Valid: true}
			confidence = sql.NullFloat64{Float64: res.Confidence, Valid: true}
			positive = sql.NullFloat64{Float64: res.PositiveProb, Valid: true}
			negative = sql.NullFloat64{Float64: res.NegativeProb, Valid: true}
		}

		result, err := stmt.Exec(rec.StrTime(), rec.User, rec.Text, string(rec.Type), class, confidence, positive, negative)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get affected rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}
	return inserted, nil
}

// ListRecords returns archived records in chronological order. An empty
// user lists everyone.
func (db *DB) ListRecords(user string) ([]pipeline.Record, error) {
	query := `SELECT str_time, user, text, message_type, sentiment, confidence, positive_prob, negative_prob FROM records`
	var args []interface{}
	if user != "" {
		query += " WHERE user = ?"
		args = append(args, user)
	}
	query += " ORDER BY str_time ASC, id ASC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []pipeline.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (pipeline.Record, error) {
	var rec pipeline.Record
	var strTime, msgType string
	var class sql.NullInt64
	var confidence, positive, negative sql.NullFloat64
	if err := row.Scan(&strTime, &rec.User, &rec.Text, &msgType, &class, &confidence, &positive, &negative); err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	ts, err := time.ParseInLocation(chat.TimeLayout, strTime, time.Local)
	if err != nil {
		return rec, fmt.Errorf("failed to parse record time %q: %w", strTime, err)
	}
	rec.Time = ts
	rec.Type = chat.MessageType(msgType)

	if class.Valid {
		rec.Sentiment = &sentiment.Result{
			Class:        sentiment.Class(class.Int64),
			Confidence:   confidence.Float64,
			PositiveProb: positive.Float64,
			NegativeProb: negative.Float64,
		}
	}
	return rec, nil
}
