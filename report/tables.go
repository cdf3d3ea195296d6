package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"chat-analyzer/analysis"
	"chat-analyzer/db"
	"chat-analyzer/utils"
)

// Table file names written by WriteAll
const (
	UserStatsFile    = "user_stats.csv"
	TimeGapsFile     = "time_gaps.csv"
	SilenceFile      = "silence_ratios.csv"
	ProportionsFile  = "sentiment_proportions.csv"
	VariabilityFile  = "emotional_variability.csv"
	WeightedFile     = "weighted_sentiment.csv"
	TopWordsFile     = "top_words.csv"
	DailyActivity    = "daily_activity.csv"
	MonthlyActivity  = "monthly_activity.csv"
	seriesFileSuffix = ".csv"
)

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func f4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// WriteUserStats writes the per-user message and word table
func WriteUserStats(path string, stats []analysis.UserStat) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.User,
			strconv.Itoa(s.MessageCount),
			strconv.Itoa(s.TotalWords),
			f2(s.AvgWords),
			f2(s.MessagePercentage),
			f2(s.WordPercentage),
		})
	}
	return writeCSV(path, []string{"User", "Message_Count", "Total_Words", "Avg_Words", "Message_Percentage", "Word_Percentage"}, rows)
}

// WriteAll writes one CSV per table and chart series of s into dir.
// It returns the paths written.
func WriteAll(dir string, s *analysis.Summary) ([]string, error) {
	var written []string
	write := func(name string, header []string, rows [][]string) error {
		path := filepath.Join(dir, name)
		if err := writeCSV(path, header, rows); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := WriteUserStats(filepath.Join(dir, UserStatsFile), s.Users); err != nil {
		return written, err
	}
	written = append(written, filepath.Join(dir, UserStatsFile))

	var rows [][]string
	for _, g := range s.Gaps {
		rows = append(rows, []string{g.User, strconv.Itoa(g.Gaps), f2(g.MeanMinutes), f2(g.VarianceMinutes)})
	}
	if err := write(TimeGapsFile, []string{"User", "Gaps", "Mean_Minutes", "Variance_Minutes"}, rows); err != nil {
		return written, err
	}

	rows = nil
	for _, st := range s.Silence.Users {
		rows = append(rows, []string{st.User, strconv.Itoa(st.Messages), strconv.Itoa(st.Breaks), strconv.Itoa(st.Vanishes), f4(st.BreakerRatio), f4(st.VanisherRatio)})
	}
	if err := write(SilenceFile, []string{"User", "Messages", "Breaks", "Vanishes", "Breaker_Ratio", "Vanisher_Ratio"}, rows); err != nil {
		return written, err
	}

	rows = nil
	for _, sh := range s.Proportions {
		rows = append(rows, []string{sh.User, f4(sh.Negative), f4(sh.Neutral), f4(sh.Positive)})
	}
	if err := write(ProportionsFile, []string{"User", "Negative_Proportion", "Neutral_Proportion", "Positive_Proportion"}, rows); err != nil {
		return written, err
	}

	rows = nil
	for _, v := range s.Variability {
		rows = append(rows, []string{v.User, f4(v.PositiveStd), f4(v.NegativeStd)})
	}
	if err := write(VariabilityFile, []string{"User", "Positive_Prob", "Negative_Prob"}, rows); err != nil {
		return written, err
	}

	rows = nil
	for _, ws := range s.Weighted {
		rows = append(rows, []string{ws.User, f4(ws.MeanPositive), f4(ws.MeanNegative), f4(ws.WeightedPositive), f4(ws.WeightedNegative)})
	}
	if err := write(WeightedFile, []string{"User", "Mean_Positive", "Mean_Negative", "Weighted_Positive", "Weighted_Negative"}, rows); err != nil {
		return written, err
	}

	rows = nil
	for _, wc := range s.Words {
		rows = append(rows, []string{wc.Word, strconv.Itoa(wc.Count)})
	}
	if err := write(TopWordsFile, []string{"Word", "Count"}, rows); err != nil {
		return written, err
	}

	for _, series := range s.Series {
		header := append([]string{series.Index}, series.Columns...)
		rows = make([][]string, 0, len(series.Rows))
		for i, label := range series.Rows {
			row := []string{label}
			for _, v := range series.Values[i] {
				row = append(row, strconv.Itoa(v))
			}
			rows = append(rows, row)
		}
		if err := write(series.Name+seriesFileSuffix, header, rows); err != nil {
			return written, err
		}
	}

	return written, nil
}

// WriteActivity writes the archive's daily and monthly activity tables.
// The archive accumulates across analyze runs, so the tables span every
// checkpoint imported so far.
func WriteActivity(dir string, stats *db.ActivityStats) ([]string, error) {
	var rows [][]string
	for _, d := range stats.Daily {
		rows = append(rows, []string{d.Date, d.User, strconv.FormatInt(d.MessageCount, 10)})
	}
	daily := filepath.Join(dir, DailyActivity)
	if err := writeCSV(daily, []string{"Date", "User", "Message_Count"}, rows); err != nil {
		return nil, err
	}

	rows = nil
	for _, m := range stats.Monthly {
		rows = append(rows, []string{m.Month, m.User, strconv.FormatInt(m.MessageCount, 10), f4(m.AvgPositiveProb), f4(m.AvgNegativeProb)})
	}
	monthly := filepath.Join(dir, MonthlyActivity)
	if err := writeCSV(monthly, []string{"Month", "User", "Message_Count", "Avg_Positive_Prob", "Avg_Negative_Prob"}, rows); err != nil {
		return []string{daily}, err
	}

	return []string{daily, monthly}, nil
}
