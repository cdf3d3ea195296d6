package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"chat-analyzer/chat"
	"chat-analyzer/sentiment"
	"chat-analyzer/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClassifier answers from a fixed table and records every call
type fakeClassifier struct {
	mu      sync.Mutex
	calls   []string
	failOn  string
	cancel  context.CancelFunc
	results map[string]*sentiment.Result
}

func (f *fakeClassifier) Classify(ctx context.Context, token, text string) (*sentiment.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if text == f.failOn && f.cancel != nil {
		f.cancel()
		return nil, context.Canceled
	}
	if res, ok := f.results[text]; ok {
		return res, nil
	}
	return &sentiment.Result{Class: sentiment.Positive, Confidence: 0.5, PositiveProb: 0.8, NegativeProb: 0.2}, nil
}

func testMessages(n int) []chat.Message {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	msgs := make([]chat.Message, 0, n)
	for i := 0; i < n; i++ {
		user := "alice"
		if i%2 == 1 {
			user = "bob"
		}
		msgs = append(msgs, chat.NewMessage("message "+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute), user))
	}
	return msgs
}

func TestRun_WritesAllTextMessages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.csv")
	msgs := testMessages(5)
	msgs = append(msgs, chat.NewMessage(`<msg><img src="x"/></msg>`, time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local), "alice"))

	fake := &fakeClassifier{}
	stats, err := NewRunner(fake, "tok", utils.NewNopLogger()).Run(context.Background(), msgs, out, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, 5, stats.Requested)
	assert.Equal(t, 5, stats.Appended)
	assert.NotEmpty(t, stats.RunID)

	records, err := ReadCheckpoint(out)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for _, rec := range records {
		assert.Equal(t, chat.TypeText, rec.Type)
		require.NotNil(t, rec.Sentiment)
		assert.Equal(t, sentiment.Positive, rec.Sentiment.Class)
	}
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.csv")
	msgs := testMessages(4)
	runner := NewRunner(&fakeClassifier{}, "tok", utils.NewNopLogger())

	_, err := runner.Run(context.Background(), msgs, out, 3)
	require.NoError(t, err)
	before, err := os.ReadFile(out)
	require.NoError(t, err)

	second := &fakeClassifier{}
	stats, err := NewRunner(second, "tok", utils.NewNopLogger()).Run(context.Background(), msgs, out, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Appended)
	assert.Equal(t, 4, stats.Skipped)
	assert.Empty(t, second.calls)

	after, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRun_HeaderWrittenOnce(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.csv")
	msgs := testMessages(6)
	runner := NewRunner(&fakeClassifier{}, "tok", utils.NewNopLogger())

	_, err := runner.Run(context.Background(), msgs[:3], out, 1)
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), msgs, out, 2)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Text,StrTime,User"))

	records, err := ReadCheckpoint(out)
	require.NoError(t, err)
	assert.Len(t, records, 6)
}

func TestRun_ResumeMatchesUninterruptedRun(t *testing.T) {
	dir := t.TempDir()
	msgs := testMessages(7)

	full := filepath.Join(dir, "full.csv")
	_, err := NewRunner(&fakeClassifier{}, "tok", utils.NewNopLogger()).Run(context.Background(), msgs, full, 2)
	require.NoError(t, err)

	// Interrupt while classifying the fifth message
	resumed := filepath.Join(dir, "resumed.csv")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupted := &fakeClassifier{failOn: msgs[4].Text, cancel: cancel}
	_, err = NewRunner(interrupted, "tok", utils.NewNopLogger()).Run(ctx, msgs, resumed, 2)
	assert.ErrorIs(t, err, context.Canceled)

	partial, err := ReadCheckpoint(resumed)
	require.NoError(t, err)
	assert.Len(t, partial, 4)

	stats, err := NewRunner(&fakeClassifier{}, "tok", utils.NewNopLogger()).Run(context.Background(), msgs, resumed, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Appended)

	want, err := os.ReadFile(full)
	require.NoError(t, err)
	got, err := os.ReadFile(resumed)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestRun_DuplicateKeyIsSkipped(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.csv")
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	msgs := []chat.Message{
		chat.NewMessage("first", ts, "alice"),
		chat.NewMessage("second", ts, "alice"),
	}

	fake := &fakeClassifier{}
	stats, err := NewRunner(fake, "tok", utils.NewNopLogger()).Run(context.Background(), msgs, out, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, fake.calls)
	assert.Equal(t, 1, stats.Skipped)
}

func TestRun_ServerErrorsBecomeNeutral(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := sentiment.NewClient(sentiment.Config{URL: server.URL, Retries: 5}, utils.NewNopLogger())
	out := filepath.Join(t.TempDir(), "results.csv")

	stats, err := NewRunner(client, "tok", utils.NewNopLogger()).Run(context.Background(), testMessages(3), out, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Fallbacks)

	records, err := ReadCheckpoint(out)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		require.NotNil(t, rec.Sentiment)
		assert.Equal(t, sentiment.Neutral, rec.Sentiment.Class)
		assert.Zero(t, rec.Sentiment.Confidence)
	}
}

func TestRun_UnknownSentimentCodeStillResumes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"sentiment":3,"confidence":0.7,"positive_prob":0.6,"negative_prob":0.4}]}`))
	}))
	defer server.Close()

	client := sentiment.NewClient(sentiment.Config{URL: server.URL, Retries: 2}, utils.NewNopLogger())
	runner := NewRunner(client, "tok", utils.NewNopLogger())
	out := filepath.Join(t.TempDir(), "results.csv")

	stats, err := runner.Run(context.Background(), testMessages(2), out, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Fallbacks)

	// The checkpoint must stay readable so the next run can resume
	stats, err = runner.Run(context.Background(), testMessages(2), out, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped)

	records, err := ReadCheckpoint(out)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, sentiment.Neutral, records[0].Sentiment.Class)
}

func TestRun_UnwritableCheckpointAborts(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be
	out := filepath.Join(dir, "results.csv")
	require.NoError(t, os.Mkdir(out, 0755))

	_, err := NewRunner(&fakeClassifier{}, "tok", utils.NewNopLogger()).Run(context.Background(), testMessages(2), out, 1)
	assert.Error(t, err)
}

func TestSample_KeepsNonTextRowsUnclassified(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sample.csv")
	msgs := testMessages(3)
	msgs = append(msgs, chat.NewMessage(`<msg><emoji md5="x"></emoji></msg>`, time.Date(2024, 3, 1, 11, 0, 0, 0, time.Local), "bob"))

	fake := &fakeClassifier{}
	stats, err := NewRunner(fake, "tok", utils.NewNopLogger()).Sample(context.Background(), msgs, out, 10, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Requested)
	assert.Len(t, fake.calls, 3)

	records, err := ReadCheckpoint(out)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, chat.TypeEmoji, records[3].Type)
	assert.Nil(t, records[3].Sentiment)
}

func TestSample_SameSeedSameDraw(t *testing.T) {
	dir := t.TempDir()
	msgs := testMessages(20)
	runner := NewRunner(&fakeClassifier{}, "tok", utils.NewNopLogger())

	_, err := runner.Sample(context.Background(), msgs, filepath.Join(dir, "a.csv"), 5, 7)
	require.NoError(t, err)
	_, err = runner.Sample(context.Background(), msgs, filepath.Join(dir, "b.csv"), 5, 7)
	require.NoError(t, err)

	a, _ := os.ReadFile(filepath.Join(dir, "a.csv"))
	b, _ := os.ReadFile(filepath.Join(dir, "b.csv"))
	assert.Equal(t, string(a), string(b))
}
