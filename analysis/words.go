package analysis

import (
	"sort"
	"strings"
	"unicode/utf8"

	"chat-analyzer/pipeline"
)

// WordCount is one entry of a frequency table
type WordCount struct {
	Word  string
	Count int
}

// WordFrequency tokenizes all texts joined by spaces and counts tokens
// longer than one character. Ties are broken by the token itself.
func WordFrequency(records []pipeline.Record, tokenizer Tokenizer) []WordCount {
	texts := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Text != "" {
			texts = append(texts, rec.Text)
		}
	}

	counts := make(map[string]int)
	for _, token := range tokenizer.Tokenize(strings.Join(texts, " ")) {
		token = strings.TrimSpace(token)
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		counts[token]++
	}

	out := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, WordCount{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// Top returns at most n entries; n <= 0 keeps all
func Top(counts []WordCount, n int) []WordCount {
	if n <= 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}
