package chat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"chat-analyzer/utils"
)

// Column names of the chat export
const (
	ColumnContent   = "StrContent"
	ColumnTime      = "StrTime"
	ColumnUser      = "Remark"
	ColumnUserAlias = "Name"
)

// ErrMissingColumn is returned when the export lacks a required column
var ErrMissingColumn = errors.New("missing column")

// Load reads and classifies an exported chat CSV file
func Load(path string, logger *utils.Logger) ([]Message, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat export: %w", err)
	}
	defer file.Close()

	messages, err := Read(file, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return messages, nil
}

// Read parses exported chat records from r. Missing content is treated as
// an empty message; the user column falls back to Name when Remark is absent.
func Read(r io.Reader, logger *utils.Logger) ([]Message, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty chat export: %w", err)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := indexColumns(header)
	contentIdx, ok := columns[ColumnContent]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnContent)
	}
	timeIdx, ok := columns[ColumnTime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnTime)
	}
	userIdx, ok := columns[ColumnUser]
	if !ok {
		logger.Warn("'%s' column not found, please check your CSV file columns", ColumnUser)
		userIdx, ok = columns[ColumnUserAlias]
		if !ok {
			return nil, fmt.Errorf("%w: %s or %s", ErrMissingColumn, ColumnUser, ColumnUserAlias)
		}
		logger.Warn("using '%s' as the user column", ColumnUserAlias)
	}

	var messages []Message
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		ts, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(field(record, timeIdx)), time.Local)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, ColumnTime, err)
		}

		messages = append(messages, NewMessage(field(record, contentIdx), ts, field(record, userIdx)))
	}

	return messages, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Excel exports prefix the first header with a BOM
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func field(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}
