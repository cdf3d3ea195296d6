package pipeline

import (
	"context"
	"fmt"

	"chat-analyzer/chat"
	"chat-analyzer/sentiment"
	"chat-analyzer/utils"

	"github.com/google/uuid"
)

// DefaultBatchSize is used when a non-positive batch size is given
const DefaultBatchSize = 100

// Classifier is the part of the sentiment client the runner needs
type Classifier interface {
	Classify(ctx context.Context, token, text string) (*sentiment.Result, error)
}

// State is a step of a run, logged on every transition
type State string

const (
	StateIdle              State = "idle"
	StateLoadingCheckpoint State = "loading_checkpoint"
	StateProcessingBatch   State = "processing_batch"
	StateAppendingResults  State = "appending_results"
	StateDone              State = "done"
)

// RunStats summarises a run
type RunStats struct {
	RunID     string
	Batches   int
	Skipped   int // already in the checkpoint
	Requested int
	Appended  int
	Fallbacks int // neutral defaults caused by request failures
}

// Runner classifies messages and persists the results
type Runner struct {
	classifier Classifier
	token      string
	logger     *utils.Logger
}

// NewRunner creates a runner that authenticates every request with token
func NewRunner(classifier Classifier, token string, logger *utils.Logger) *Runner {
	return &Runner{
		classifier: classifier,
		token:      token,
		logger:     logger,
	}
}

// Run classifies the text messages in batches and appends each batch to
// outputPath. Messages whose key is already in outputPath are skipped, so
// an interrupted run can be restarted with the same arguments.
func (r *Runner) Run(ctx context.Context, messages []chat.Message, outputPath string, batchSize int) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString()}
	log := r.logger.With("run_id", stats.RunID)
	log.Info("State %s", StateIdle)

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	texts := chat.Filter(messages, chat.TypeText)

	log.Info("State %s: %s", StateLoadingCheckpoint, outputPath)
	processed := make(map[RecordKey]struct{})
	if utils.FileExists(outputPath) {
		existing, err := ReadCheckpoint(outputPath)
		if err != nil {
			return stats, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		processed = ProcessedKeys(existing)
		log.Info("Checkpoint holds %d processed records", len(processed))
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		stats.Batches++
		log.Info("State %s: batch %d, messages %d-%d of %d", StateProcessingBatch, stats.Batches, start+1, end, len(texts))

		var results []Record
		for _, msg := range texts[start:end] {
			key := KeyOf(msg)
			if _, done := processed[key]; done {
				stats.Skipped++
				continue
			}

			res, err := r.classifier.Classify(ctx, r.token, msg.Text)
			if err != nil {
				// Keep what this batch already paid for
				if appendErr := r.appendBatch(log, outputPath, results, &stats); appendErr != nil {
					return stats, appendErr
				}
				return stats, err
			}

			stats.Requested++
			if res != nil && res.Fallback {
				stats.Fallbacks++
			}
			results = append(results, NewRecord(msg, res))
			processed[key] = struct{}{}
		}

		if err := r.appendBatch(log, outputPath, results, &stats); err != nil {
			return stats, err
		}
	}

	log.Info("State %s: batches=%d requested=%d skipped=%d appended=%d fallbacks=%d",
		StateDone, stats.Batches, stats.Requested, stats.Skipped, stats.Appended, stats.Fallbacks)
	return stats, nil
}

func (r *Runner) appendBatch(log *utils.Logger, outputPath string, results []Record, stats *RunStats) error {
	if len(results) == 0 {
		log.Info("Batch %d had nothing new", stats.Batches)
		return nil
	}
	log.Info("State %s: %d records", StateAppendingResults, len(results))
	if err := AppendRecords(outputPath, results); err != nil {
		return fmt.Errorf("failed to append batch %d: %w", stats.Batches, err)
	}
	stats.Appended += len(results)
	return nil
}

// Sample draws sampleSize messages of any type, classifies the text ones and
// overwrites outputPath. Non-text rows keep empty sentiment columns.
func (r *Runner) Sample(ctx context.Context, messages []chat.Message, outputPath string, sampleSize int, seed int64) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString(), Batches: 1}
	log := r.logger.With("run_id", stats.RunID)

	drawn := chat.Sample(messages, sampleSize, seed)
	log.Info("Sampled %d of %d messages (seed %d)", len(drawn), len(messages), seed)

	records := make([]Record, 0, len(drawn))
	for _, msg := range drawn {
		var res *sentiment.Result
		if msg.Type == chat.TypeText {
			var err error
			res, err = r.classifier.Classify(ctx, r.token, msg.Text)
			if err != nil {
				return stats, err
			}
			stats.Requested++
			if res != nil && res.Fallback {
				stats.Fallbacks++
			}
		}
		records = append(records, NewRecord(msg, res))
	}

	if err := WriteRecords(outputPath, records); err != nil {
		return stats, fmt.Errorf("failed to write sample results: %w", err)
	}
	stats.Appended = len(records)
	log.Info("Sample results saved to %s", outputPath)
	return stats, nil
}
