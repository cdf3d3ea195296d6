package analysis

import (
	"strings"
	"time"

	"chat-analyzer/pipeline"
)

// MonthLayout formats month buckets
const MonthLayout = "2006-01"

// DateLayout formats day buckets
const DateLayout = "2006-01-02"

// Overview summarises the whole conversation
type Overview struct {
	Participants    []string
	Messages        int
	Words           int
	First           pipeline.Record
	Last            pipeline.Record
	SpanDays        int
	ActiveDays      int
	AvgPerActiveDay float64

	PeakHour        int
	PeakHourCount   int
	PeakHourPercent float64

	PeakMonth        string
	PeakMonthCount   int
	PeakMonthPercent float64

	LongestSilence   time.Duration
	SilenceBreaker   string
	SilenceBreakText string
}

// BuildOverview needs at least one record
func BuildOverview(records []pipeline.Record) (Overview, error) {
	if len(records) == 0 {
		return Overview{}, ErrNoRecords
	}
	sorted := chronological(records)

	ov := Overview{
		Participants: Users(records),
		Messages:     len(records),
		First:        sorted[0],
		Last:         sorted[len(sorted)-1],
	}

	days := make(map[string]bool)
	hours := make(map[int]int)
	months := make(map[string]int)
	for i, rec := range sorted {
		ov.Words += Words(rec.Text)
		days[rec.Time.Format(DateLayout)] = true
		hours[rec.Time.Hour()]++
		months[rec.Time.Format(MonthLayout)]++

		if i > 0 {
			if gap := rec.Time.Sub(sorted[i-1].Time); gap > ov.LongestSilence {
				ov.LongestSilence = gap
				ov.SilenceBreaker = rec.User
				ov.SilenceBreakText = rec.Text
			}
		}
	}

	ov.SpanDays = daysBetween(ov.First.Time, ov.Last.Time)
	ov.ActiveDays = len(days)
	ov.AvgPerActiveDay = ratio(ov.Messages, ov.ActiveDays)

	for hour := 0; hour < 24; hour++ {
		if hours[hour] > ov.PeakHourCount {
			ov.PeakHour, ov.PeakHourCount = hour, hours[hour]
		}
	}
	ov.PeakHourPercent = ratio(ov.PeakHourCount, ov.Messages) * 100

	for _, month := range sortedKeys(months) {
		if months[month] > ov.PeakMonthCount {
			ov.PeakMonth, ov.PeakMonthCount = month, months[month]
		}
	}
	ov.PeakMonthPercent = ratio(ov.PeakMonthCount, ov.Messages) * 100

	return ov, nil
}

// daysBetween counts calendar days between the dates of a and b
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// TermCount is the occurrence count of a substring
type TermCount struct {
	Term         string
	Total        int
	PerUser      map[string]int
	PerActiveDay float64
}

// TermCounts counts non-overlapping occurrences of term in every text
func TermCounts(records []pipeline.Record, term string) TermCount {
	tc := TermCount{Term: term, PerUser: make(map[string]int)}
	for _, user := range Users(records) {
		tc.PerUser[user] = 0
	}
	if term == "" {
		return tc
	}

	days := make(map[string]bool)
	for _, rec := range records {
		days[rec.Time.Format(DateLayout)] = true
		n := strings.Count(rec.Text, term)
		tc.Total += n
		tc.PerUser[rec.User] += n
	}
	tc.PerActiveDay = ratio(tc.Total, len(days))
	return tc
}
