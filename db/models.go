package db

import "time"

// Run represents one pipeline invocation
type Run struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"` // "sample" or "request"
	OutputPath string    `json:"output_path"`
	Batches    int       `json:"batches"`
	Requested  int       `json:"requested"`
	Skipped    int       `json:"skipped"`
	Appended   int       `json:"appended"`
	Fallbacks  int       `json:"fallbacks"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyActivity is the message count of one user on one day
type DailyActivity struct {
	Date         string // Format: "2024-12-31"
	User         string
	MessageCount int64
}

// MonthlyActivity is the message count and mean sentiment of one user in one month
type MonthlyActivity struct {
	Month           string // Format: "2024-12"
	User            string
	MessageCount    int64
	AvgPositiveProb float64
	AvgNegativeProb float64
}

// ActivityStats groups the archive by day and by month
type ActivityStats struct {
	Daily   []*DailyActivity
	Monthly []*MonthlyActivity
}
