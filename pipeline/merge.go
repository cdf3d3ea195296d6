package pipeline

import "fmt"

// MergeCheckpoints concatenates checkpoint files into out under a single
// header. A row whose key already appeared in an earlier input is dropped.
// It returns the number of rows written.
func MergeCheckpoints(out string, inputs ...string) (int, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("no checkpoint files to merge")
	}

	seen := make(map[RecordKey]struct{})
	var merged []Record
	for _, input := range inputs {
		records, err := ReadCheckpoint(input)
		if err != nil {
			return 0, err
		}
		for _, rec := range records {
			key := rec.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, rec)
		}
	}

	if err := WriteRecords(out, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}
