package spccsv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// Writer encodes rows in the column layout of one hazard.
type Writer struct {
	csv     *csv.Writer
	columns []column
	record  []string
}

func NewWriter(w io.Writer, h domain.Hazard) *Writer {
	cols := layout(h)
	return &Writer{csv: csv.NewWriter(w), columns: cols, record: make([]string, len(cols))}
}

// WriteHeader writes the column names.
func (w *Writer) WriteHeader() error {
	for i, c := range w.columns {
		w.record[i] = c.name
	}
	return w.csv.Write(w.record)
}

func (w *Writer) Write(row domain.RawRow) error {
	for i, c := range w.columns {
		w.record[i] = c.encode(row)
	}
	return w.csv.Write(w.record)
}

// WriteAll writes the rows of every item in the collection, then flushes.
func WriteAll[T interface {
	domain.Item
	Rows() []domain.RawRow
}](w *Writer, c *domain.Collection[T]) error {
	for i, item := range c.All() {
		for _, row := range item.Rows() {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write item %d: %w", i, err)
			}
		}
	}
	return w.Flush()
}

// Flush writes buffered data and reports any earlier write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
