package analysis

import (
	"sort"
	"strconv"

	"chat-analyzer/pipeline"
	"chat-analyzer/sentiment"
)

// Series is a row-by-column count table, the data behind one chart
type Series struct {
	Name    string
	Index   string // header of the row-label column
	Rows    []string
	Columns []string
	Values  [][]int
}

type cell struct{ row, col string }

func buildSeries(name, index string, rows, cols []string, counts map[cell]int) Series {
	s := Series{Name: name, Index: index, Rows: rows, Columns: cols}
	s.Values = make([][]int, len(rows))
	for i, row := range rows {
		s.Values[i] = make([]int, len(cols))
		for j, col := range cols {
			s.Values[i][j] = counts[cell{row, col}]
		}
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func classColumns() []string {
	cols := make([]string, len(sentiment.Classes))
	for i, c := range sentiment.Classes {
		cols[i] = c.String()
	}
	return cols
}

func hourRows() []string {
	rows := make([]string, 24)
	for h := range rows {
		rows[h] = strconv.Itoa(h)
	}
	return rows
}

// ActiveHours counts messages per hour of day and user
func ActiveHours(records []pipeline.Record) Series {
	counts := make(map[cell]int)
	for _, rec := range records {
		counts[cell{strconv.Itoa(rec.Time.Hour()), rec.User}]++
	}
	return buildSeries("active_hours", "Hour", hourRows(), Users(records), counts)
}

// MonthlyMessages counts messages per month and user
func MonthlyMessages(records []pipeline.Record) Series {
	counts := make(map[cell]int)
	months := make(map[string]int)
	for _, rec := range records {
		month := rec.Time.Format(MonthLayout)
		months[month]++
		counts[cell{month, rec.User}]++
	}
	return buildSeries("monthly_messages", "Month", sortedKeys(months), Users(records), counts)
}

// SentimentTrend counts classified messages per day and class
func SentimentTrend(records []pipeline.Record) Series {
	counts := make(map[cell]int)
	dates := make(map[string]int)
	for _, rec := range records {
		if rec.Sentiment == nil {
			continue
		}
		date := rec.Time.Format(DateLayout)
		dates[date]++
		counts[cell{date, rec.Sentiment.Class.String()}]++
	}
	return buildSeries("sentiment_trend", "Date", sortedKeys(dates), classColumns(), counts)
}

// SentimentVolatility counts classified messages per hour of day and class
func SentimentVolatility(records []pipeline.Record) Series {
	counts := make(map[cell]int)
	for _, rec := range records {
		if rec.Sentiment == nil {
			continue
		}
		counts[cell{strconv.Itoa(rec.Time.Hour()), rec.Sentiment.Class.String()}]++
	}
	return buildSeries("sentiment_volatility", "Hour", hourRows(), classColumns(), counts)
}

// SentimentDistribution counts classified messages per user and class
func SentimentDistribution(records []pipeline.Record) Series {
	counts := make(map[cell]int)
	for _, rec := range records {
		if rec.Sentiment == nil {
			continue
		}
		counts[cell{rec.User, rec.Sentiment.Class.String()}]++
	}
	return buildSeries("sentiment_distribution", "User", Users(records), classColumns(), counts)
}
