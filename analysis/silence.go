package analysis

import (
	"sort"
	"time"

	"chat-analyzer/pipeline"
)

// Silence thresholds. A message after more than BreakerGap of silence
// breaks it; one after more than VanisherGap (and at most BreakerGap) marks
// its sender as having vanished from the conversation.
const (
	BreakerGap  = 12 * time.Hour
	VanisherGap = time.Hour
)

// SilenceStat counts one user's silence breaks and vanishes
type SilenceStat struct {
	User          string
	Messages      int
	Breaks        int
	Vanishes      int
	BreakerRatio  float64
	VanisherRatio float64
}

// SilenceSummary is the result of SilenceBreakers
type SilenceSummary struct {
	Users   []SilenceStat
	Freezes int // silences longer than BreakerGap
}

// TopBreaker returns the user with the highest breaker ratio, if anyone broke a silence
func (s SilenceSummary) TopBreaker() (string, bool) {
	return topBy(s.Users, func(st SilenceStat) float64 { return st.BreakerRatio })
}

// TopVanisher returns the user with the highest vanisher ratio
func (s SilenceSummary) TopVanisher() (string, bool) {
	return topBy(s.Users, func(st SilenceStat) float64 { return st.VanisherRatio })
}

func topBy(stats []SilenceStat, value func(SilenceStat) float64) (string, bool) {
	best := -1
	for i, st := range stats {
		if value(st) <= 0 {
			continue
		}
		if best < 0 || value(st) > value(stats[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return stats[best].User, true
}

// chronological returns a time-sorted copy; ties keep input order
func chronological(records []pipeline.Record) []pipeline.Record {
	sorted := make([]pipeline.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	return sorted
}

// SilenceBreakers classifies each message by the conversation-wide gap
// before it. Breaker and vanisher are mutually exclusive; ratios are over
// the user's own message count.
func SilenceBreakers(records []pipeline.Record) SilenceSummary {
	sorted := chronological(records)

	counts := make(map[string]*SilenceStat)
	var summary SilenceSummary
	for i, rec := range sorted {
		st, ok := counts[rec.User]
		if !ok {
			st = &SilenceStat{User: rec.User}
			counts[rec.User] = st
		}
		st.Messages++
		if i == 0 {
			continue
		}

		gap := rec.Time.Sub(sorted[i-1].Time)
		switch {
		case gap > BreakerGap:
			st.Breaks++
			summary.Freezes++
		case gap > VanisherGap:
			st.Vanishes++
		}
	}

	for _, user := range Users(records) {
		st := counts[user]
		st.BreakerRatio = ratio(st.Breaks, st.Messages)
		st.VanisherRatio = ratio(st.Vanishes, st.Messages)
		summary.Users = append(summary.Users, *st)
	}
	return summary
}
