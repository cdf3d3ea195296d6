package db

import (
	"path/filepath"
	"testing"
	"time"

	"chat-analyzer/chat"
	"chat-analyzer/pipeline"
	"chat-analyzer/sentiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "data", "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleRecords() []pipeline.Record {
	base := time.Date(2024, 1, 31, 22, 0, 0, 0, time.Local)
	return []pipeline.Record{
		{Text: "晚安", Time: base, User: "alice", Type: chat.TypeText,
			Sentiment: &sentiment.Result{Class: sentiment.Positive, Confidence: 0.9, PositiveProb: 0.8, NegativeProb: 0.2}},
		{Text: "good night 100%", Time: base.Add(time.Minute), User: "bob", Type: chat.TypeText,
			Sentiment: &sentiment.Result{Class: sentiment.Neutral, Confidence: 0.5, PositiveProb: 0.4, NegativeProb: 0.6}},
		{Text: `<msg><img src="a"/></msg>`, Time: base.Add(3 * time.Hour), User: "bob", Type: chat.TypeImage},
	}
}

func TestImportRecords_Idempotent(t *testing.T) {
	database := newTestDB(t)

	n, err := database.ImportRecords(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = database.ImportRecords(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stats, err := database.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.RecordCount)
	assert.Equal(t, int64(2), stats.UserCount)
	assert.Greater(t, stats.DBSizeBytes, int64(0))
}

func TestListRecords_RoundTrip(t *testing.T) {
	database := newTestDB(t)
	_, err := database.ImportRecords(sampleRecords())
	require.NoError(t, err)

	all, err := database.ListRecords("")
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), all)

	bob, err := database.ListRecords("bob")
	require.NoError(t, err)
	require.Len(t, bob, 2)
	assert.Nil(t, bob[1].Sentiment)
	assert.Equal(t, chat.TypeImage, bob[1].Type)
}

func TestSearchRecords(t *testing.T) {
	database := newTestDB(t)
	_, err := database.ImportRecords(sampleRecords())
	require.NoError(t, err)

	results, err := database.SearchRecords("晚安", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].User)

	// Wildcards are matched literally
	results, err = database.SearchRecords("%", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bob", results[0].User)

	results, err = database.SearchRecords("", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetActivityStats(t *testing.T) {
	database := newTestDB(t)
	_, err := database.ImportRecords(sampleRecords())
	require.NoError(t, err)

	stats, err := database.GetActivityStats()
	require.NoError(t, err)

	// The image message falls on the next day and month
	require.Len(t, stats.Daily, 3)
	assert.Equal(t, "2024-01-31", stats.Daily[0].Date)
	assert.Equal(t, "alice", stats.Daily[0].User)
	assert.Equal(t, "2024-02-01", stats.Daily[2].Date)

	require.Len(t, stats.Monthly, 3)
	assert.Equal(t, "2024-01", stats.Monthly[0].Month)
	assert.InDelta(t, 0.8, stats.Monthly[0].AvgPositiveProb, 1e-9)
	assert.Equal(t, "2024-02", stats.Monthly[2].Month)
	assert.Equal(t, int64(1), stats.Monthly[2].MessageCount)
	assert.Zero(t, stats.Monthly[2].AvgPositiveProb)
}

func TestGetActivityStats_AccumulatesImports(t *testing.T) {
	database := newTestDB(t)
	records := sampleRecords()
	_, err := database.ImportRecords(records[:1])
	require.NoError(t, err)
	_, err = database.ImportRecords(records[1:2])
	require.NoError(t, err)

	stats, err := database.GetActivityStats()
	require.NoError(t, err)
	require.Len(t, stats.Daily, 2)
	assert.Equal(t, "alice", stats.Daily[0].User)
	assert.Equal(t, "bob", stats.Daily[1].User)
}

func TestRuns(t *testing.T) {
	database := newTestDB(t)

	older := &Run{ID: "run-1", Mode: "sample", OutputPath: "sample.csv", Requested: 3, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &Run{ID: "run-2", Mode: "request", OutputPath: "out.csv", Batches: 2, Appended: 5, Fallbacks: 1}
	require.NoError(t, database.SaveRun(older))
	require.NoError(t, database.SaveRun(newer))
	assert.False(t, newer.CreatedAt.IsZero())

	runs, err := database.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 5, runs[0].Appended)
	assert.Equal(t, "run-1", runs[1].ID)

	// Duplicate IDs are rejected
	assert.Error(t, database.SaveRun(&Run{ID: "run-1", Mode: "merge"}))

	require.NoError(t, database.Vacuum())
}
