package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"chat-analyzer/chat"
	"chat-analyzer/sentiment"
	"chat-analyzer/utils"
)

// Header is the column layout of checkpoint files
var Header = []string{
	"Text", "StrTime", "User", "MessageType",
	"Sentiment", "Confidence", "Positive_Prob", "Negative_Prob",
}

// ErrMalformedCheckpoint is returned when a checkpoint cannot be parsed
var ErrMalformedCheckpoint = errors.New("malformed checkpoint")

// ReadCheckpoint loads every record of a checkpoint file
func ReadCheckpoint(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecords parses checkpoint rows. Columns are located by header name;
// Text, StrTime and User are required, the rest may be missing or empty.
func ReadRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCheckpoint, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	for _, required := range []string{"Text", "StrTime", "User"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCheckpoint, required)
		}
	}

	get := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCheckpoint, line, err)
		}

		ts, err := time.ParseInLocation(chat.TimeLayout, get(row, "StrTime"), time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCheckpoint, line, err)
		}

		text := get(row, "Text")
		msgType, ok := chat.ParseMessageType(get(row, "MessageType"))
		if !ok {
			msgType = chat.Classify(text)
		}

		res, err := parseSentiment(row, get)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCheckpoint, line, err)
		}

		records = append(records, Record{
			Text:      text,
			Time:      ts,
			User:      get(row, "User"),
			Type:      msgType,
			Sentiment: res,
		})
	}
	return records, nil
}

func parseSentiment(row []string, get func([]string, string) string) (*sentiment.Result, error) {
	raw := strings.TrimSpace(get(row, "Sentiment"))
	if raw == "" {
		return nil, nil
	}
	class, err := sentiment.ParseClass(raw)
	if err != nil {
		return nil, err
	}

	res := &sentiment.Result{Class: class}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"Confidence", &res.Confidence},
		{"Positive_Prob", &res.PositiveProb},
		{"Negative_Prob", &res.NegativeProb},
	}
	for _, field := range fields {
		value := strings.TrimSpace(get(row, field.name))
		if value == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %v", field.name, err)
		}
		*field.dst = parsed
	}
	return res, nil
}

// ProcessedKeys returns the set of resume keys present in records
func ProcessedKeys(records []Record) map[RecordKey]struct{} {
	keys := make(map[RecordKey]struct{}, len(records))
	for _, rec := range records {
		keys[rec.Key()] = struct{}{}
	}
	return keys
}

// AppendRecords appends rows to path. The header is written only when the
// file is created (or is still empty).
func AppendRecords(path string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	if err := writeRows(f, records, info.Size() == 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteRecords overwrites path with a header and rows
func WriteRecords(path string, records []Record) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	if err := writeRows(f, records, true); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRows(w io.Writer, records []Record, withHeader bool) error {
	writer := csv.NewWriter(w)
	if withHeader {
		if err := writer.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, rec := range records {
		if err := writer.Write(encodeRecord(rec)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	return nil
}

func encodeRecord(rec Record) []string {
	row := []string{rec.Text, rec.StrTime(), rec.User, string(rec.Type), "", "", "", ""}
	if res := rec.Sentiment; res != nil {
		row[4] = res.Class.Code()
		row[5] = formatFloat(res.Confidence)
		row[6] = formatFloat(res.PositiveProb)
		row[7] = formatFloat(res.NegativeProb)
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
