package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"chat-analyzer/analysis"
	"chat-analyzer/utils"
)

// ExportFormat represents the export format
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatMarkdown ExportFormat = "markdown"
)

// SummaryExport is the JSON shape of a summary
type SummaryExport struct {
	Participants []string                  `json:"participants"`
	Messages     int                       `json:"messages"`
	Words        int                       `json:"words"`
	FirstChat    time.Time                 `json:"first_chat"`
	LastChat     time.Time                 `json:"last_chat"`
	ActiveDays   int                       `json:"active_days"`
	Freezes      int                       `json:"freezes"`
	Users        []analysis.UserStat       `json:"users"`
	Gaps         []analysis.GapStat        `json:"gaps"`
	Silence      []analysis.SilenceStat    `json:"silence"`
	Proportions  []analysis.SentimentShare `json:"sentiment_proportions"`
	Variability  []analysis.Variability    `json:"emotional_variability"`
	TopWords     []analysis.WordCount      `json:"top_words"`
	Term         analysis.TermCount        `json:"term"`
	Metadata     map[string]string         `json:"metadata,omitempty"`
}

// Export writes s to path in the given format
func Export(path string, format ExportFormat, s *analysis.Summary) error {
	var data []byte
	switch format {
	case FormatJSON:
		var err error
		data, err = exportJSON(s)
		if err != nil {
			return err
		}
	case FormatMarkdown:
		data = []byte(exportMarkdown(s))
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}

	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func exportJSON(s *analysis.Summary) ([]byte, error) {
	ov := s.Overview
	export := SummaryExport{
		Participants: ov.Participants,
		Messages:     ov.Messages,
		Words:        ov.Words,
		FirstChat:    ov.First.Time,
		LastChat:     ov.Last.Time,
		ActiveDays:   ov.ActiveDays,
		Freezes:      s.Silence.Freezes,
		Users:        s.Users,
		Gaps:         s.Gaps,
		Silence:      s.Silence.Users,
		Proportions:  s.Proportions,
		Variability:  s.Variability,
		TopWords:     s.Words,
		Term:         s.Term,
		Metadata: map[string]string{
			"export_version": "1.0",
			"export_date":    time.Now().Format(time.RFC3339),
		},
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

func exportMarkdown(s *analysis.Summary) string {
	var sb strings.Builder
	ov := s.Overview

	sb.WriteString(fmt.Sprintf("# Chat analysis: %s\n\n", strings.Join(ov.Participants, ", ")))
	sb.WriteString(fmt.Sprintf("**First chat**: %s\n", ov.First.StrTime()))
	sb.WriteString(fmt.Sprintf("**Last chat**: %s\n", ov.Last.StrTime()))
	sb.WriteString(fmt.Sprintf("**Messages**: %d over %d active days\n\n", ov.Messages, ov.ActiveDays))
	sb.WriteString("---\n\n")

	sb.WriteString("## Users\n\n")
	sb.WriteString("| User | Messages | Words | Avg words | Message % | Word % |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, u := range s.Users {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.2f | %.2f | %.2f |\n",
			u.User, u.MessageCount, u.TotalWords, u.AvgWords, u.MessagePercentage, u.WordPercentage))
	}

	sb.WriteString("\n## Sentiment\n\n")
	sb.WriteString("| User | Negative | Neutral | Positive |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, sh := range s.Proportions {
		sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f |\n", sh.User, sh.Negative, sh.Neutral, sh.Positive))
	}

	sb.WriteString("\n## Silence\n\n")
	sb.WriteString(fmt.Sprintf("%d silences lasted over 12 hours.\n\n", s.Silence.Freezes))
	sb.WriteString("| User | Breaker ratio | Vanisher ratio |\n")
	sb.WriteString("|---|---|---|\n")
	for _, st := range s.Silence.Users {
		sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f |\n", st.User, st.BreakerRatio, st.VanisherRatio))
	}

	if len(s.Words) > 0 {
		sb.WriteString("\n## Top words\n\n")
		for i, wc := range s.Words {
			sb.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, wc.Word, wc.Count))
		}
	}

	return sb.String()
}
