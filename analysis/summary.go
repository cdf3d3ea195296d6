package analysis

import "chat-analyzer/pipeline"

// Options tune Analyze
type Options struct {
	Tokenizer Tokenizer
	Term      string
	TopWords  int
}

// Summary bundles every reduction the report renders
type Summary struct {
	Overview    Overview
	Users       []UserStat
	Gaps        []GapStat
	Silence     SilenceSummary
	Proportions []SentimentShare
	Variability []Variability
	Weighted    []WeightedScore
	Words       []WordCount
	Term        TermCount
	Series      []Series
}

// Analyze runs all reductions over records
func Analyze(records []pipeline.Record, opts Options) (*Summary, error) {
	overview, err := BuildOverview(records)
	if err != nil {
		return nil, err
	}

	tokenizer := opts.Tokenizer
	if tokenizer == nil {
		tokenizer = SimpleTokenizer{}
	}

	return &Summary{
		Overview:    overview,
		Users:       UserStats(records),
		Gaps:        TimeGaps(records),
		Silence:     SilenceBreakers(records),
		Proportions: SentimentProportions(records),
		Variability: EmotionalVariability(records),
		Weighted:    WeightedSentiment(records),
		Words:       Top(WordFrequency(records, tokenizer), opts.TopWords),
		Term:        TermCounts(records, opts.Term),
		Series: []Series{
			ActiveHours(records),
			MonthlyMessages(records),
			SentimentTrend(records),
			SentimentVolatility(records),
			SentimentDistribution(records),
		},
	}, nil
}
