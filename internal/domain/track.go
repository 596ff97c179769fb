package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// TotalsPolicy selects how path length, injuries and fatalities aggregate
// across the segments of a track. Historical revisions of the database tools
// disagree, so the choice is explicit.
type TotalsPolicy int

const (
	// TotalsFirst reports the first segment's value. The source data usually
	// repeats whole-track totals on the first segment of a multi-state track.
	TotalsFirst TotalsPolicy = iota
	// TotalsSum adds the per-segment values.
	TotalsSum
)

// ParseTotalsPolicy parses "first" or "sum".
func ParseTotalsPolicy(s string) (TotalsPolicy, error) {
	switch s {
	case "first", "":
		return TotalsFirst, nil
	case "sum":
		return TotalsSum, nil
	default:
		return 0, fmt.Errorf("unknown totals policy %q", s)
	}
}

func (p TotalsPolicy) String() string {
	if p == TotalsSum {
		return "sum"
	}
	return "first"
}

// Track is one physical tornado reconstructed from its per-state segments.
// Attributes are derived from the segments on lookup.
type Track struct {
	segments []*Segment
	totals   TotalsPolicy
}

// NewTrack builds a track owning segs, in order.
func NewTrack(segs ...*Segment) (*Track, error) {
	if len(segs) == 0 {
		return nil, ErrEmptyTrack
	}
	return &Track{segments: slices.Clone(segs)}, nil
}

// WithTotals returns a copy of the track using policy p for totals.
func (t *Track) WithTotals(p TotalsPolicy) *Track {
	c := *t
	c.totals = p
	return &c
}

// Segments returns the track's segments in order.
func (t *Track) Segments() []*Segment { return slices.Clone(t.segments) }

func (t *Track) first() *Segment { return t.segments[0] }
func (t *Track) last() *Segment { return t.segments[len(t.segments)-1] }

func (t *Track) EventID() int { return t.first().EventID }
func (t *Track) Year() int { return t.first().Year() }
func (t *Track) Time() time.Time { return t.first().Time }
func (t *Track) StartLat() float64 { return t.first().StartLat }
func (t *Track) StartLon() float64 { return t.first().StartLon }
func (t *Track) EndLat() float64 { return t.last().EndLat }
func (t *Track) EndLon() float64 { return t.last().EndLon }
func (t *Track) Magnitude() int { return maxOf(t.segments, func(s *Segment) int { return s.Magnitude }) }
func (t *Track) Width() int { return maxOf(t.segments, func(s *Segment) int { return s.Width }) }
func (t *Track) Loss() float64 { return maxOf(t.segments, func(s *Segment) float64 { return s.Loss }) }
func (t *Track) CropLoss() float64 { return maxOf(t.segments, func(s *Segment) float64 { return s.CropLoss }) }
func (t *Track) FScaleMod() int { return maxOf(t.segments, func(s *Segment) int { return s.FScaleMod }) }
func (t *Track) Length() float64 { return total(t, func(s *Segment) float64 { return s.Length }) }
func (t *Track) Injuries() int { return total(t, func(s *Segment) int { return s.Injuries }) }
func (t *Track) Fatalities() int { return total(t, func(s *Segment) int { return s.Fatalities }) }
func (t *Track) Segment(i int) *Segment { return t.segments[i] }

// States lists the reporting state of each segment.
func (t *Track) States() []string {
	states := make([]string, len(t.segments))
	for i, s := range t.segments {
		states[i] = s.State
	}
	return states
}

// Counties concatenates the county codes of every segment, in segment order.
func (t *Track) Counties() []int {
	var codes []int
	for _, s := range t.segments {
		codes = append(codes, s.Counties...)
	}
	return codes
}

func maxOf[V cmp.Ordered](segs []*Segment, f func(*Segment) V) V {
	m := f(segs[0])
	for _, s := range segs[1:] {
		m = max(m, f(s))
	}
	return m
}

func total[V int | float64](t *Track, f func(*Segment) V) V {
	if t.totals != TotalsSum {
		return f(t.first())
	}
	var sum V
	for _, s := range t.segments {
		sum += f(s)
	}
	return sum
}

// trackAggregates holds the attributes with a single derived value. Every
// other segment attribute is reported as the list of per-segment values.
var trackAggregates = map[string]func(*Track) any{
	AttrMagnitude:  func(t *Track) any { return t.Magnitude() },
	AttrWidth:      func(t *Track) any { return t.Width() },
	AttrLoss:       func(t *Track) any { return t.Loss() },
	AttrCropLoss:   func(t *Track) any { return t.CropLoss() },
	AttrFScaleMod:  func(t *Track) any { return t.FScaleMod() },
	AttrLength:     func(t *Track) any { return t.Length() },
	AttrInjuries:   func(t *Track) any { return t.Injuries() },
	AttrFatalities: func(t *Track) any { return t.Fatalities() },
	AttrTime:       func(t *Track) any { return t.Time() },
	AttrStartLat:   func(t *Track) any { return t.StartLat() },
	AttrStartLon:   func(t *Track) any { return t.StartLon() },
	AttrEndLat:     func(t *Track) any { return t.EndLat() },
	AttrEndLon:     func(t *Track) any { return t.EndLon() },
	AttrCounties:   func(t *Track) any { return t.Counties() },
}

// Get looks up an aggregated attribute by public or canonical name.
func (t *Track) Get(attr string) (any, error) {
	canonical := HazardTornado.Resolve(attr)
	if f, ok := trackAggregates[canonical]; ok {
		return f(t), nil
	}
	f, ok := segmentFields[canonical]
	if !ok {
		return nil, fmt.Errorf("tornado track %q: %w", attr, ErrUnknownAttribute)
	}
	values := make([]any, len(t.segments))
	for i, s := range t.segments {
		values[i] = f(s)
	}
	return values, nil
}

// Matches reports whether the track satisfies criteria.
func (t *Track) Matches(criteria Criteria) (bool, error) {
	return Matches(t, criteria)
}

// Rows renders the track back into source rows: a summary row when the track
// has more than one segment, followed by each segment's own rows.
func (t *Track) Rows() []RawRow {
	var rows []RawRow
	if len(t.segments) > 1 {
		first := t.first()
		summary := RawRow{
			EventID:    first.EventID,
			State:      first.State,
			StateFIPS:  first.StateFIPS,
			StateSeq:   first.StateSeq,
			Magnitude:  float64(t.Magnitude()),
			Injuries:   t.Injuries(),
			Fatalities: t.Fatalities(),
			Loss:       t.Loss(),
			CropLoss:   t.CropLoss(),
			StartLat:   t.StartLat(),
			StartLon:   t.StartLon(),
			EndLat:     t.EndLat(),
			EndLon:     t.EndLon(),
			Length:     t.Length(),
			Width:      t.Width(),
			NumStates:  first.NumStates,
			StateNum:   first.StateNum,
			SegmentNum: first.SegmentNum,
			FScaleMod:  t.FScaleMod(),
		}
		if summary.NumStates > 1 {
			summary.StateNum = 0
			summary.SegmentNum = 1
		}
		setLocalTime(&summary, t.Time())
		rows = append(rows, summary)
	}
	for _, s := range t.segments {
		rows = append(rows, s.Rows()...)
	}
	return rows
}
