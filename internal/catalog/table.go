package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// row is one record of a catalog table with positional field access.
type row struct {
	source string
	num    int
	fields []string
	err    error
}

// Err returns the first field conversion error encountered on this row.
func (r *row) Err() error {
	return r.err
}

func (r *row) str(i int) string {
	if r.err != nil {
		return ""
	}
	if i >= len(r.fields) {
		r.err = fmt.Errorf("%s line %d: missing column %d", r.source, r.num, i)
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r *row) int(i int) int {
	s := r.str(i)
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.err = fmt.Errorf("%s line %d column %d: %w", r.source, r.num, i, err)
		return 0
	}
	return v
}

func (r *row) float(i int) float64 {
	s := r.str(i)
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = fmt.Errorf("%s line %d column %d: %w", r.source, r.num, i, err)
		return 0
	}
	return v
}

// readTable reads a CSV catalog file, skipping the header line, and calls
// parse once per record.
func readTable(path string, parse func(r *row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading catalog %s: %w", path, err)
	}

	// First record holds the column headers.
	for i, record := range records[min(1, len(records)):] {
		r := &row{source: path, num: i + 2, fields: record}
		if err := parse(r); err != nil {
			return err
		}
	}

	return nil
}
