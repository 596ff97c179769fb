package spccsv

import (
	"context"
	"fmt"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// Files reads each hazard's rows from its own file. It implements
// pipeline.RowSource.
type Files map[domain.Hazard]string

func (f Files) ReadRows(_ context.Context, h domain.Hazard) ([]domain.RawRow, error) {
	path, ok := f[h]
	if !ok || path == "" {
		return nil, fmt.Errorf("no source file for %s", h)
	}
	return ReadFile(path)
}
