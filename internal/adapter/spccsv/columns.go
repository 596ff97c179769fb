package spccsv

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// column binds an SPC column name to a RawRow field.
type column struct {
	name   string
	decode func(*domain.RawRow, string) error
	encode func(domain.RawRow) string
}

func intColumn(name string, field func(*domain.RawRow) *int) column {
	return column{
		name: name,
		decode: func(r *domain.RawRow, s string) error {
			v, err := parseInt(s)
			*field(r) = v
			return err
		},
		encode: func(r domain.RawRow) string { return strconv.Itoa(*field(&r)) },
	}
}

func floatColumn(name string, field func(*domain.RawRow) *float64) column {
	return column{
		name: name,
		decode: func(r *domain.RawRow, s string) error {
			v, err := strconv.ParseFloat(s, 64)
			*field(r) = v
			return err
		},
		encode: func(r domain.RawRow) string { return strconv.FormatFloat(*field(&r), 'f', -1, 64) },
	}
}

func stringColumn(name string, field func(*domain.RawRow) *string) column {
	return column{
		name: name,
		decode: func(r *domain.RawRow, s string) error {
			*field(r) = s
			return nil
		},
		encode: func(r domain.RawRow) string { return *field(&r) },
	}
}

// parseInt accepts integers written with a zero fractional part, which some
// revisions of the database use for counts.
func parseInt(s string) (int, error) {
	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" {
		s = whole
	}
	return strconv.Atoi(s)
}

var commonColumns = []column{
	intColumn("om", func(r *domain.RawRow) *int { return &r.EventID }),
	intColumn("yr", func(r *domain.RawRow) *int { return &r.Year }),
	intColumn("mo", func(r *domain.RawRow) *int { return &r.Month }),
	intColumn("dy", func(r *domain.RawRow) *int { return &r.Day }),
	stringColumn("date", func(r *domain.RawRow) *string { return &r.Date }),
	stringColumn("time", func(r *domain.RawRow) *string { return &r.Time }),
	intColumn("tz", func(r *domain.RawRow) *int { return &r.TimeZone }),
	stringColumn("st", func(r *domain.RawRow) *string { return &r.State }),
	intColumn("stf", func(r *domain.RawRow) *int { return &r.StateFIPS }),
	intColumn("stn", func(r *domain.RawRow) *int { return &r.StateSeq }),
	floatColumn("mag", func(r *domain.RawRow) *float64 { return &r.Magnitude }),
	intColumn("inj", func(r *domain.RawRow) *int { return &r.Injuries }),
	intColumn("fat", func(r *domain.RawRow) *int { return &r.Fatalities }),
	floatColumn("loss", func(r *domain.RawRow) *float64 { return &r.Loss }),
	floatColumn("closs", func(r *domain.RawRow) *float64 { return &r.CropLoss }),
	floatColumn("slat", func(r *domain.RawRow) *float64 { return &r.StartLat }),
	floatColumn("slon", func(r *domain.RawRow) *float64 { return &r.StartLon }),
	floatColumn("elat", func(r *domain.RawRow) *float64 { return &r.EndLat }),
	floatColumn("elon", func(r *domain.RawRow) *float64 { return &r.EndLon }),
	floatColumn("len", func(r *domain.RawRow) *float64 { return &r.Length }),
	intColumn("wid", func(r *domain.RawRow) *int { return &r.Width }),
	intColumn("ns", func(r *domain.RawRow) *int { return &r.NumStates }),
	intColumn("sn", func(r *domain.RawRow) *int { return &r.StateNum }),
	intColumn("sg", func(r *domain.RawRow) *int { return &r.SegmentNum }),
	intColumn("f1", func(r *domain.RawRow) *int { return &r.Counties[0] }),
	intColumn("f2", func(r *domain.RawRow) *int { return &r.Counties[1] }),
	intColumn("f3", func(r *domain.RawRow) *int { return &r.Counties[2] }),
	intColumn("f4", func(r *domain.RawRow) *int { return &r.Counties[3] }),
}

var (
	fscaleColumn  = intColumn("fc", func(r *domain.RawRow) *int { return &r.FScaleMod })
	magTypeColumn = stringColumn("mt", func(r *domain.RawRow) *string { return &r.MagType })
)

// Columns returns the column layout written for a hazard: the common SPC
// columns, then fc for tornadoes or mt for wind.
func Columns(h domain.Hazard) []string {
	cols := layout(h)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

func layout(h domain.Hazard) []column {
	cols := append([]column(nil), commonColumns...)
	switch h {
	case domain.HazardTornado:
		cols = append(cols, fscaleColumn)
	case domain.HazardWind:
		cols = append(cols, magTypeColumn)
	}
	return cols
}

// byName indexes every known column for header-driven reads.
var byName = func() map[string]column {
	m := make(map[string]column, len(commonColumns)+2)
	for _, c := range commonColumns {
		m[c.name] = c
	}
	m[fscaleColumn.name] = fscaleColumn
	m[magTypeColumn.name] = magTypeColumn
	return m
}()
