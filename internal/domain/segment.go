package domain

import (
	"fmt"
	"slices"
	"time"
)

// Segment is one per-state fragment of a tornado as recorded in the source
// data. Segments are immutable once built by [UnpackSegment].
type Segment struct {
	EventID    int
	Time       time.Time // UTC
	State      string
	StateFIPS  int
	StateSeq   int
	Magnitude  int // -1 when unrated
	Injuries   int
	Fatalities int
	Loss       float64
	CropLoss   float64
	StartLat   float64
	StartLon   float64
	EndLat     float64
	EndLon     float64
	Length     float64
	Width      int
	NumStates  int // states the whole track affected
	StateNum   int // this segment's position among those states
	SegmentNum int
	Counties   []int
	FScaleMod  int
}

var segmentFields = map[string]func(*Segment) any{
	AttrEventID:    func(s *Segment) any { return s.EventID },
	AttrTime:       func(s *Segment) any { return s.Time },
	AttrState:      func(s *Segment) any { return s.State },
	AttrStateFIPS:  func(s *Segment) any { return s.StateFIPS },
	AttrStateSeq:   func(s *Segment) any { return s.StateSeq },
	AttrMagnitude:  func(s *Segment) any { return s.Magnitude },
	AttrInjuries:   func(s *Segment) any { return s.Injuries },
	AttrFatalities: func(s *Segment) any { return s.Fatalities },
	AttrLoss:       func(s *Segment) any { return s.Loss },
	AttrCropLoss:   func(s *Segment) any { return s.CropLoss },
	AttrStartLat:   func(s *Segment) any { return s.StartLat },
	AttrStartLon:   func(s *Segment) any { return s.StartLon },
	AttrEndLat:     func(s *Segment) any { return s.EndLat },
	AttrEndLon:     func(s *Segment) any { return s.EndLon },
	AttrLength:     func(s *Segment) any { return s.Length },
	AttrWidth:      func(s *Segment) any { return s.Width },
	AttrNumStates:  func(s *Segment) any { return s.NumStates },
	AttrStateNum:   func(s *Segment) any { return s.StateNum },
	AttrSegmentNum: func(s *Segment) any { return s.SegmentNum },
	AttrCounties:   func(s *Segment) any { return slices.Clone(s.Counties) },
	AttrFScaleMod:  func(s *Segment) any { return s.FScaleMod },
}

// Get looks up an attribute by public or canonical name.
func (s *Segment) Get(attr string) (any, error) {
	f, ok := segmentFields[HazardTornado.Resolve(attr)]
	if !ok {
		return nil, fmt.Errorf("tornado segment %q: %w", attr, ErrUnknownAttribute)
	}
	return f(s), nil
}

// Matches reports whether the segment satisfies criteria.
func (s *Segment) Matches(criteria Criteria) (bool, error) {
	return Matches(s, criteria)
}

// Year is the UTC year of the segment's start time, used to bucket segments
// into tracks.
func (s *Segment) Year() int { return s.Time.Year() }

func (s *Segment) clone() *Segment {
	c := *s
	c.Counties = slices.Clone(s.Counties)
	return &c
}

// Merge folds two segments reported for the same state into one. The
// surviving segment keeps all of its own attributes and takes the
// concatenation of both county lists; the other is discarded. Neither input is
// modified.
//
// The primary is chosen from the state numbers: for a single-state track the
// segment with state number 1 wins, otherwise the other segment wins if its
// state number is 1. This picks the wrong primary for tracks that leave a
// state and later re-enter it (e.g. 2013 event 480993).
func Merge(a, b *Segment) *Segment {
	primary := a
	if a.NumStates == 1 {
		if a.StateNum != 1 {
			primary = b
		}
	} else if b.StateNum == 1 {
		primary = b
	}

	merged := primary.clone()
	merged.Counties = make([]int, 0, len(a.Counties)+len(b.Counties))
	merged.Counties = append(merged.Counties, a.Counties...)
	merged.Counties = append(merged.Counties, b.Counties...)
	return merged
}

// Rows renders the segment back into source rows. Counties beyond the four
// partial columns spill onto continuation rows whose per-segment measurements
// are zeroed and whose segment number is -9.
func (s *Segment) Rows() []RawRow {
	base := s.baseRow()

	partials := countyPartials(s.Counties)
	var rows []RawRow
	for len(partials) > 4 {
		row := base
		copy(row.Counties[:], partials[:4])
		partials = partials[4:]
		if len(rows) > 0 {
			row.resetOverflow()
		}
		rows = append(rows, row)
	}

	row := base
	copy(row.Counties[:], partials)
	if len(rows) > 0 {
		row.resetOverflow()
	}
	return append(rows, row)
}

func (s *Segment) baseRow() RawRow {
	row := RawRow{
		EventID:    s.EventID,
		State:      s.State,
		StateFIPS:  s.StateFIPS,
		StateSeq:   s.StateSeq,
		Magnitude:  float64(s.Magnitude),
		Injuries:   s.Injuries,
		Fatalities: s.Fatalities,
		Loss:       s.Loss,
		CropLoss:   s.CropLoss,
		StartLat:   s.StartLat,
		StartLon:   s.StartLon,
		EndLat:     s.EndLat,
		EndLon:     s.EndLon,
		Length:     s.Length,
		Width:      s.Width,
		NumStates:  s.NumStates,
		StateNum:   s.StateNum,
		SegmentNum: s.SegmentNum,
		FScaleMod:  s.FScaleMod,
	}
	setLocalTime(&row, s.Time)
	return row
}
