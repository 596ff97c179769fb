// Package spccsv reads and writes the SPC severe report database CSV files.
package spccsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// requiredColumns must be present in a file's header for its rows to be
// unpacked at all.
var requiredColumns = []string{"om", "date", "time", "tz", "st", "stf"}

// Reader decodes rows from an SPC CSV file. The first record is the header;
// columns are matched by name, unknown columns are ignored.
type Reader struct {
	csv     *csv.Reader
	columns []*column // by position; nil for ignored columns
	line    int
}

// NewReader reads and validates the header.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rd := &Reader{csv: cr, columns: make([]*column, len(header)), line: 1}
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if c, ok := byName[name]; ok {
			rd.columns[i] = &c
			seen[name] = true
		}
	}
	for _, name := range requiredColumns {
		if !seen[name] {
			return nil, fmt.Errorf("header missing column %q", name)
		}
	}
	return rd, nil
}

// Read returns the next row, or io.EOF after the last one. Errors name the
// file line and column.
func (r *Reader) Read() (domain.RawRow, error) {
	rec, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawRow{}, io.EOF
		}
		return domain.RawRow{}, fmt.Errorf("line %d: %w: %w", r.line+1, domain.ErrMalformedRow, err)
	}
	r.line, _ = r.csv.FieldPos(0)

	var row domain.RawRow
	for i, field := range rec {
		c := r.columns[i]
		if c == nil {
			continue
		}
		if err := c.decode(&row, strings.TrimSpace(field)); err != nil {
			return domain.RawRow{}, fmt.Errorf("line %d column %s: %w: %w", r.line, c.name, domain.ErrMalformedRow, err)
		}
	}
	return row, nil
}

// ReadAll reads every remaining row.
func (r *Reader) ReadAll() ([]domain.RawRow, error) {
	var rows []domain.RawRow
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// ReadFile reads every row of the file at path.
func ReadFile(path string) ([]domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
