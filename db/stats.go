package db

import "fmt"

// GetActivityStats groups archived records per user by day and by month.
// It covers every record ever imported, not only the latest checkpoint.
func (db *DB) GetActivityStats() (*ActivityStats, error) {
	stats := &ActivityStats{}

	dailyQuery := `
		SELECT
			DATE(str_time) as date,
			user,
			COUNT(*) as message_count
		FROM records
		GROUP BY DATE(str_time), user
		ORDER BY date ASC, user ASC
	`
	rows, err := db.conn.Query(dailyQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		day := &DailyActivity{}
		if err := rows.Scan(&day.Date, &day.User, &day.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats.Daily = append(stats.Daily, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily stats: %w", err)
	}

	// Unclassified rows count as messages but not toward the averages
	monthlyQuery := `
		SELECT
			strftime('%Y-%m', str_time) as month,
			user,
			COUNT(*) as message_count,
			COALESCE(AVG(positive_prob), 0) as avg_positive,
			COALESCE(AVG(negative_prob), 0) as avg_negative
		FROM records
		GROUP BY strftime('%Y-%m', str_time), user
		ORDER BY month ASC, user ASC
	`
	rows, err = db.conn.Query(monthlyQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		month := &MonthlyActivity{}
		if err := rows.Scan(&month.Month, &month.User, &month.MessageCount, &month.AvgPositiveProb, &month.AvgNegativeProb); err != nil {
			return nil, fmt.Errorf("failed to scan monthly stats: %w", err)
		}
		stats.Monthly = append(stats.Monthly, month)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly stats: %w", err)
	}

	return stats, nil
}
