package analysis

import (
	"chat-analyzer/pipeline"
	"chat-analyzer/sentiment"
)

// SentimentShare is the fraction of a user's messages in each class
type SentimentShare struct {
	User     string
	Messages int
	Negative float64
	Neutral  float64
	Positive float64
}

// SentimentProportions divides class counts by the user's message count.
// Unclassified messages count toward the denominator only.
func SentimentProportions(records []pipeline.Record) []SentimentShare {
	groups := byUser(records)
	shares := make([]SentimentShare, 0, len(groups))
	for _, user := range Users(records) {
		counts := make(map[sentiment.Class]int)
		for _, rec := range groups[user] {
			if rec.Sentiment != nil {
				counts[rec.Sentiment.Class]++
			}
		}
		n := len(groups[user])
		shares = append(shares, SentimentShare{
			User:     user,
			Messages: n,
			Negative: ratio(counts[sentiment.Negative], n),
			Neutral:  ratio(counts[sentiment.Neutral], n),
			Positive: ratio(counts[sentiment.Positive], n),
		})
	}
	return shares
}

// MostPositive picks the user with the largest positive share
func MostPositive(shares []SentimentShare) (string, bool) {
	return topShare(shares, func(s SentimentShare) float64 { return s.Positive })
}

// MostNegative picks the user who complains the most
func MostNegative(shares []SentimentShare) (string, bool) {
	return topShare(shares, func(s SentimentShare) float64 { return s.Negative })
}

func topShare(shares []SentimentShare, value func(SentimentShare) float64) (string, bool) {
	if len(shares) == 0 {
		return "", false
	}
	best := 0
	for i := range shares {
		if value(shares[i]) > value(shares[best]) {
			best = i
		}
	}
	return shares[best].User, true
}

// Variability is the sample standard deviation of a user's probabilities
type Variability struct {
	User        string
	PositiveStd float64
	NegativeStd float64
}

// EmotionalVariability is 0 for users with a single classified message
func EmotionalVariability(records []pipeline.Record) []Variability {
	groups := byUser(records)
	out := make([]Variability, 0, len(groups))
	for _, user := range Users(records) {
		var pos, neg []float64
		for _, rec := range groups[user] {
			if rec.Sentiment == nil {
				continue
			}
			pos = append(pos, rec.Sentiment.PositiveProb)
			neg = append(neg, rec.Sentiment.NegativeProb)
		}
		out = append(out, Variability{
			User:        user,
			PositiveStd: sampleStdDev(pos),
			NegativeStd: sampleStdDev(neg),
		})
	}
	return out
}

// MostVariable returns the user whose positive probability swings the most
func MostVariable(vs []Variability) (string, bool) {
	if len(vs) == 0 {
		return "", false
	}
	best := 0
	for i := range vs {
		if vs[i].PositiveStd > vs[best].PositiveStd {
			best = i
		}
	}
	return vs[best].User, true
}

// WeightedScore averages the probabilities, plain and scaled by confidence
type WeightedScore struct {
	User             string
	MeanPositive     float64
	MeanNegative     float64
	WeightedPositive float64
	WeightedNegative float64
}

// WeightedSentiment computes WeightedScore per user over classified messages
func WeightedSentiment(records []pipeline.Record) []WeightedScore {
	groups := byUser(records)
	out := make([]WeightedScore, 0, len(groups))
	for _, user := range Users(records) {
		var pos, neg, wpos, wneg []float64
		for _, rec := range groups[user] {
			res := rec.Sentiment
			if res == nil {
				continue
			}
			pos = append(pos, res.PositiveProb)
			neg = append(neg, res.NegativeProb)
			wpos = append(wpos, res.PositiveProb*res.Confidence)
			wneg = append(wneg, res.NegativeProb*res.Confidence)
		}
		out = append(out, WeightedScore{
			User:             user,
			MeanPositive:     mean(pos),
			MeanNegative:     mean(neg),
			WeightedPositive: mean(wpos),
			WeightedNegative: mean(wneg),
		})
	}
	return out
}
