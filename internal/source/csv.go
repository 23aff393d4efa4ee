package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Row is one raw record from a dataset: header name to field value.
// Values may be missing, empty, or the literal strings "null"/"undefined";
// normalization deals with that downstream.
type Row map[string]string

// Loader supplies raw tabular records for a dataset.
type Loader interface {
	Load(ctx context.Context, path string) ([]Row, error)
}

// CSVLoader reads header-keyed rows from a CSV file on disk.
type CSVLoader struct{}

// Load parses the file at path into field maps. The first row is the
// header; short rows leave trailing columns absent, long rows drop the
// extras. Blank lines are skipped.
func (CSVLoader) Load(ctx context.Context, path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		if isBlank(record) {
			continue
		}
		row := make(Row, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}
