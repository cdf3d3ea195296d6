// Package analysis reduces checkpoint records to per-user statistics.
// Every function is a read-only pass over its input.
package analysis

import (
	"errors"
	"math"
	"sort"
	"unicode/utf8"

	"chat-analyzer/pipeline"
)

// ErrNoRecords is returned when a reduction needs at least one record
var ErrNoRecords = errors.New("no records to analyze")

// UserStat holds message and word counts for one user
type UserStat struct {
	User              string
	MessageCount      int
	TotalWords        int
	AvgWords          float64
	MessagePercentage float64
	WordPercentage    float64
}

// Words counts characters, which is how words are measured for CJK chat text
func Words(text string) int {
	return utf8.RuneCountInString(text)
}

// Users returns the distinct users in sorted order
func Users(records []pipeline.Record) []string {
	seen := make(map[string]bool)
	var users []string
	for _, rec := range records {
		if !seen[rec.User] {
			seen[rec.User] = true
			users = append(users, rec.User)
		}
	}
	sort.Strings(users)
	return users
}

// byUser groups records per user, keeping input order within a user
func byUser(records []pipeline.Record) map[string][]pipeline.Record {
	groups := make(map[string][]pipeline.Record)
	for _, rec := range records {
		groups[rec.User] = append(groups[rec.User], rec)
	}
	return groups
}

// UserStats computes per-user counts and their share of the totals
func UserStats(records []pipeline.Record) []UserStat {
	totalWords := 0
	for _, rec := range records {
		totalWords += Words(rec.Text)
	}

	groups := byUser(records)
	stats := make([]UserStat, 0, len(groups))
	for _, user := range Users(records) {
		stat := UserStat{User: user, MessageCount: len(groups[user])}
		for _, rec := range groups[user] {
			stat.TotalWords += Words(rec.Text)
		}
		stat.AvgWords = ratio(stat.TotalWords, stat.MessageCount)
		stat.MessagePercentage = ratio(stat.MessageCount, len(records)) * 100
		stat.WordPercentage = ratio(stat.TotalWords, totalWords) * 100
		stats = append(stats, stat)
	}
	return stats
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleVariance uses n-1 and is 0 when fewer than two values exist
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values)-1)
}

func sampleStdDev(values []float64) float64 {
	return math.Sqrt(sampleVariance(values))
}
