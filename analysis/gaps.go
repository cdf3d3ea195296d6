package analysis

import (
	"sort"
	"time"

	"chat-analyzer/pipeline"
)

// GapStat describes the intervals between one user's consecutive messages
type GapStat struct {
	User            string
	Gaps            int
	MeanMinutes     float64
	VarianceMinutes float64
}

// TimeGaps computes, per user, the mean and sample variance of the minutes
// between that user's consecutive messages
func TimeGaps(records []pipeline.Record) []GapStat {
	groups := byUser(records)
	stats := make([]GapStat, 0, len(groups))
	for _, user := range Users(records) {
		times := make([]time.Time, 0, len(groups[user]))
		for _, rec := range groups[user] {
			times = append(times, rec.Time)
		}
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		var gaps []float64
		for i := 1; i < len(times); i++ {
			gaps = append(gaps, times[i].Sub(times[i-1]).Minutes())
		}

		stats = append(stats, GapStat{
			User:            user,
			Gaps:            len(gaps),
			MeanMinutes:     mean(gaps),
			VarianceMinutes: sampleVariance(gaps),
		})
	}
	return stats
}

// MostActive returns the user with the shortest mean gap among users that
// have at least one gap
func MostActive(stats []GapStat) (string, bool) {
	best := -1
	for i, s := range stats {
		if s.Gaps == 0 {
			continue
		}
		if best < 0 || s.MeanMinutes < stats[best].MeanMinutes {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return stats[best].User, true
}

// MostIrregular returns the user whose gaps vary the most
func MostIrregular(stats []GapStat) (string, bool) {
	best := -1
	for i, s := range stats {
		if s.Gaps == 0 {
			continue
		}
		if best < 0 || s.VarianceMinutes > stats[best].VarianceMinutes {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return stats[best].User, true
}
