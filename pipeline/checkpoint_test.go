package pipeline

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chat-analyzer/chat"
	"chat-analyzer/sentiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords_AcceptsLegacyColumns(t *testing.T) {
	input := "\ufeffText,StrTime,User,Sentiment,Confidence,Positive_Prob,Negative_Prob\n" +
		"你好,2024-01-02 03:04:05,alice,positive,0.9,0.95,0.05\n" +
		"bye,2024-01-02 03:05:05,bob,1.0,,,\n" +
		"<msg><img/></msg>,2024-01-02 03:06:05,bob,,,,\n"

	records, err := ReadRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "alice", records[0].User)
	assert.Equal(t, chat.TypeText, records[0].Type)
	assert.Equal(t, sentiment.Positive, records[0].Sentiment.Class)
	assert.InDelta(t, 0.95, records[0].Sentiment.PositiveProb, 1e-9)

	assert.Equal(t, sentiment.Neutral, records[1].Sentiment.Class)
	assert.Zero(t, records[1].Sentiment.Confidence)

	assert.Equal(t, chat.TypeImage, records[2].Type)
	assert.Nil(t, records[2].Sentiment)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 6, 5, 0, time.Local), records[2].Time)
}

func TestReadRecords_MissingColumn(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("Text,User\nhi,alice\n"))
	assert.True(t, errors.Is(err, ErrMalformedCheckpoint))
}

func TestReadRecords_BadTimestamp(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("Text,StrTime,User\nhi,yesterday,alice\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	records := []Record{
		{Text: "a, \"quoted\"\nline", Time: ts, User: "alice", Type: chat.TypeText,
			Sentiment: &sentiment.Result{Class: sentiment.Negative, Confidence: 0.25, PositiveProb: 0.1, NegativeProb: 0.9}},
		{Text: "", Time: ts.Add(time.Hour), User: "bob", Type: chat.TypeEmpty},
	}

	require.NoError(t, WriteRecords(path, records))
	loaded, err := ReadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestProcessedKeys(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	keys := ProcessedKeys([]Record{
		{Time: ts, User: "alice"},
		{Time: ts, User: "alice"},
		{Time: ts, User: "bob"},
	})
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, RecordKey{StrTime: "2024-05-06 07:08:09", User: "bob"})
}

func TestMergeCheckpoints(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	out := filepath.Join(dir, "merged.csv")

	require.NoError(t, WriteRecords(first, []Record{
		{Text: "one", Time: base, User: "alice", Type: chat.TypeText},
		{Text: "two", Time: base.Add(time.Minute), User: "bob", Type: chat.TypeText},
	}))
	require.NoError(t, WriteRecords(second, []Record{
		{Text: "two again", Time: base.Add(time.Minute), User: "bob", Type: chat.TypeText},
		{Text: "three", Time: base.Add(2 * time.Minute), User: "alice", Type: chat.TypeText},
	}))

	n, err := MergeCheckpoints(out, first, second)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	merged, err := ReadCheckpoint(out)
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, "two", merged[1].Text)
	assert.Equal(t, "three", merged[2].Text)
}

func TestMergeCheckpoints_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := MergeCheckpoints(filepath.Join(dir, "out.csv"), filepath.Join(dir, "nope.csv"))
	assert.Error(t, err)

	_, err = MergeCheckpoints(filepath.Join(dir, "out.csv"))
	assert.Error(t, err)
}
