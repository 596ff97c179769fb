package domain

import (
	"fmt"
	"slices"
	"time"
)

// Report is a single-point wind or hail report.
type Report struct {
	Hazard     Hazard
	EventID    int
	Time       time.Time // UTC
	State      string
	StateFIPS  int
	StateSeq   int
	Magnitude  float64 // knots for wind, inches for hail
	MagType    string  // wind only: EG (estimated gust), MG (measured gust), ...
	Injuries   int
	Fatalities int
	Loss       float64
	CropLoss   float64
	Lat        float64
	Lon        float64
	Counties   []int // zero or one county
}

var reportFields = map[string]func(*Report) any{
	AttrEventID:    func(r *Report) any { return r.EventID },
	AttrTime:       func(r *Report) any { return r.Time },
	AttrState:      func(r *Report) any { return r.State },
	AttrStateFIPS:  func(r *Report) any { return r.StateFIPS },
	AttrStateSeq:   func(r *Report) any { return r.StateSeq },
	AttrMagnitude:  func(r *Report) any { return r.Magnitude },
	AttrInjuries:   func(r *Report) any { return r.Injuries },
	AttrFatalities: func(r *Report) any { return r.Fatalities },
	AttrLoss:       func(r *Report) any { return r.Loss },
	AttrCropLoss:   func(r *Report) any { return r.CropLoss },
	AttrStartLat:   func(r *Report) any { return r.Lat },
	AttrStartLon:   func(r *Report) any { return r.Lon },
	AttrCounties:   func(r *Report) any { return slices.Clone(r.Counties) },
}

// Get looks up an attribute by public or canonical name. The magnitude type
// only exists on wind reports.
func (r *Report) Get(attr string) (any, error) {
	canonical := r.Hazard.Resolve(attr)
	if canonical == AttrMagType && r.Hazard == HazardWind {
		return r.MagType, nil
	}
	f, ok := reportFields[canonical]
	if !ok {
		return nil, fmt.Errorf("%s report %q: %w", r.Hazard, attr, ErrUnknownAttribute)
	}
	return f(r), nil
}

// Matches reports whether the report satisfies criteria.
func (r *Report) Matches(criteria Criteria) (bool, error) {
	return Matches(r, criteria)
}

// Rows renders the report back into its single source row.
func (r *Report) Rows() []RawRow {
	row := RawRow{
		EventID:    r.EventID,
		State:      r.State,
		StateFIPS:  r.StateFIPS,
		StateSeq:   r.StateSeq,
		Magnitude:  r.Magnitude,
		Injuries:   r.Injuries,
		Fatalities: r.Fatalities,
		Loss:       r.Loss,
		CropLoss:   r.CropLoss,
		StartLat:   r.Lat,
		StartLon:   r.Lon,
		MagType:    r.MagType,
	}
	copy(row.Counties[:1], countyPartials(r.Counties))
	setLocalTime(&row, r.Time)
	return []RawRow{row}
}
