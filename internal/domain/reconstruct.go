package domain

import (
	"fmt"
	"slices"
	"strings"
)

type reconstructorState int

const (
	stateIdle reconstructorState = iota
	stateAccumulating
)

type bucketKey struct {
	year    int
	eventID int
}

// IncompleteBucket describes an event whose segments cover fewer states than
// the event declares. Such events are left out of the reconstructed output.
type IncompleteBucket struct {
	Year           int
	EventID        int
	States         []string // distinct reporting states seen, first-seen order
	DeclaredStates int
	Segments       int
}

func (b IncompleteBucket) String() string {
	return fmt.Sprintf("%d event %d: %d of %d states (%s) across %d segments",
		b.Year, b.EventID, len(b.States), b.DeclaredStates, strings.Join(b.States, ","), b.Segments)
}

// FlushResult is what a reconstructor emits when it closes out a year.
type FlushResult struct {
	Tracks     []*Track
	Incomplete []IncompleteBucket
}

func (r *FlushResult) append(other FlushResult) {
	r.Tracks = append(r.Tracks, other.Tracks...)
	r.Incomplete = append(r.Incomplete, other.Incomplete...)
}

// ReconstructorOption configures a Reconstructor.
type ReconstructorOption func(*Reconstructor)

// WithCorrections replaces the known-defect table used for split corrections.
func WithCorrections(table []Correction) ReconstructorOption {
	return func(r *Reconstructor) { r.corrections = table }
}

// WithTotals sets the totals policy on every track produced.
func WithTotals(p TotalsPolicy) ReconstructorOption {
	return func(r *Reconstructor) { r.totals = p }
}

// Reconstructor assembles tornado tracks from a stream of segments. It is
// either idle or accumulating a single year; segments of one year are bucketed
// by event id and turned into tracks when the year is flushed.
//
// Input must be ordered by year. Feeding an earlier year after a later one
// splits that year's events across two flushes. A Reconstructor is not safe
// for concurrent use.
type Reconstructor struct {
	state       reconstructorState
	year        int
	buckets     map[bucketKey][]*Segment
	order       []bucketKey
	corrections []Correction
	totals      TotalsPolicy
}

// NewReconstructor returns an idle reconstructor using [KnownCorrections].
func NewReconstructor(opts ...ReconstructorOption) *Reconstructor {
	r := &Reconstructor{corrections: KnownCorrections}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Year returns the year being accumulated, or false when idle.
func (r *Reconstructor) Year() (int, bool) {
	return r.year, r.state == stateAccumulating
}

// BeginYear moves the reconstructor to accumulate year. Any other open year
// is flushed first and its result returned.
func (r *Reconstructor) BeginYear(year int) FlushResult {
	var res FlushResult
	if r.state == stateAccumulating {
		if r.year == year {
			return res
		}
		res = r.Flush()
	}
	r.state = stateAccumulating
	r.year = year
	r.buckets = make(map[bucketKey][]*Segment)
	r.order = nil
	return res
}

// Add buckets a segment under the year being accumulated.
func (r *Reconstructor) Add(seg *Segment) error {
	if r.state != stateAccumulating {
		return ErrNotAccumulating
	}
	if seg.Year() != r.year {
		return fmt.Errorf("%w: segment %d is in %d, accumulating %d", ErrYearMismatch, seg.EventID, seg.Year(), r.year)
	}
	key := bucketKey{year: r.year, eventID: seg.EventID}
	if _, ok := r.buckets[key]; !ok {
		r.order = append(r.order, key)
	}
	r.buckets[key] = append(r.buckets[key], seg)
	return nil
}

// Consume adds seg, first beginning the segment's year when it differs from
// the one being accumulated. It returns whatever that transition flushed.
func (r *Reconstructor) Consume(seg *Segment) FlushResult {
	res := r.BeginYear(seg.Year())
	// BeginYear guarantees the year matches.
	_ = r.Add(seg)
	return res
}

// Flush turns every complete bucket of the open year into a track, reports
// the incomplete ones, and returns the reconstructor to idle. Flushing an idle
// reconstructor returns an empty result.
func (r *Reconstructor) Flush() FlushResult {
	var res FlushResult
	if r.state != stateAccumulating {
		return res
	}

	for _, key := range r.order {
		segs := splitFragments(r.buckets[key], r.corrections)
		states := distinctStates(segs)
		if len(states) != segs[0].NumStates {
			res.Incomplete = append(res.Incomplete, IncompleteBucket{
				Year:           key.year,
				EventID:        key.eventID,
				States:         states,
				DeclaredStates: segs[0].NumStates,
				Segments:       len(segs),
			})
			continue
		}
		res.Tracks = append(res.Tracks, r.assemble(segs, states))
	}

	r.state = stateIdle
	r.year = 0
	r.buckets = nil
	r.order = nil
	return res
}

// assemble folds the segments of each state into one representative segment
// and orders the representatives by the state's first appearance.
func (r *Reconstructor) assemble(segs []*Segment, states []string) *Track {
	if len(segs) == 1 {
		return &Track{segments: segs, totals: r.totals}
	}

	merged := make([]*Segment, 0, len(states))
	for _, st := range states {
		var acc *Segment
		for _, s := range segs {
			if s.State != st {
				continue
			}
			if acc == nil {
				acc = s
				continue
			}
			acc = Merge(acc, s)
		}
		merged = append(merged, acc)
	}
	return &Track{segments: merged, totals: r.totals}
}

func distinctStates(segs []*Segment) []string {
	var states []string
	for _, s := range segs {
		if !slices.Contains(states, s.State) {
			states = append(states, s.State)
		}
	}
	return states
}

// ReconstructTracks runs every segment through a fresh reconstructor and
// flushes the final year.
func ReconstructTracks(segs []*Segment, opts ...ReconstructorOption) FlushResult {
	r := NewReconstructor(opts...)
	var res FlushResult
	for _, s := range segs {
		res.append(r.Consume(s))
	}
	res.append(r.Flush())
	return res
}
