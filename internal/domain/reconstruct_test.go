package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_TieBreak(t *testing.T) {
	first := &Segment{State: "OK", NumStates: 2, StateNum: 1, SegmentNum: 1, Counties: []int{40001}}
	second := &Segment{State: "OK", NumStates: 2, StateNum: 0, SegmentNum: 2, Counties: []int{40003}}

	ab := Merge(first, second)
	ba := Merge(second, first)
	assert.Equal(t, 1, ab.SegmentNum)
	assert.Equal(t, 1, ba.SegmentNum)
	assert.Equal(t, []int{40001, 40003}, ab.Counties)
	assert.Equal(t, []int{40003, 40001}, ba.Counties)

	// Inputs are left alone.
	assert.Equal(t, []int{40001}, first.Counties)
	assert.Equal(t, []int{40003}, second.Counties)
}

func TestMerge_SingleState(t *testing.T) {
	a := &Segment{NumStates: 1, StateNum: 1, SegmentNum: 1, Counties: []int{1}}
	b := &Segment{NumStates: 1, StateNum: 0, SegmentNum: -9, Counties: []int{2}}

	assert.Equal(t, 1, Merge(a, b).SegmentNum)
	// When the first argument is not the state entry, the second wins.
	assert.Equal(t, 1, Merge(b, a).SegmentNum)
}

func TestReconstructor_SingleSegment(t *testing.T) {
	seg := mustSegment(t, tornadoRow(5, "2000-05-03", "12:00:00", "OK", 1, 1, 1, 27))
	res := ReconstructTracks([]*Segment{seg})

	require.Len(t, res.Tracks, 1)
	assert.Empty(t, res.Incomplete)
	assert.Equal(t, []*Segment{seg}, res.Tracks[0].Segments())
}

func TestReconstructor_MultiState(t *testing.T) {
	rows := []RawRow{
		tornadoRow(9, "2000-05-03", "12:00:00", "OK", 2, 1, 1, 27, 109),
		tornadoRow(9, "2000-05-03", "12:00:00", "KS", 2, 2, 1, 35),
		tornadoRow(9, "2000-05-03", "12:00:00", "OK", 2, 1, 2, 81),
	}
	var segs []*Segment
	for _, r := range rows {
		segs = append(segs, mustSegment(t, r))
	}

	res := ReconstructTracks(segs)
	require.Len(t, res.Tracks, 1)
	tr := res.Tracks[0]

	assert.Equal(t, []string{"OK", "KS"}, tr.States())
	assert.Equal(t, []int{40027, 40109, 40081, 20035}, tr.Counties())

	sum := 0
	for _, s := range tr.Segments() {
		sum += len(s.Counties)
	}
	assert.Len(t, tr.Counties(), sum)
}

func TestReconstructor_IncompleteBucketDropped(t *testing.T) {
	segs := []*Segment{
		mustSegment(t, tornadoRow(11, "2000-05-03", "12:00:00", "OK", 2, 1, 1, 27)),
		mustSegment(t, tornadoRow(12, "2000-05-03", "13:00:00", "TX", 1, 1, 1, 1)),
	}

	res := ReconstructTracks(segs)
	require.Len(t, res.Tracks, 1)
	assert.Equal(t, 12, res.Tracks[0].EventID())

	require.Len(t, res.Incomplete, 1)
	inc := res.Incomplete[0]
	assert.Equal(t, 2000, inc.Year)
	assert.Equal(t, 11, inc.EventID)
	assert.Equal(t, []string{"OK"}, inc.States)
	assert.Equal(t, 2, inc.DeclaredStates)
	assert.Contains(t, inc.String(), "1 of 2 states")
}

func TestReconstructor_YearTransitions(t *testing.T) {
	r := NewReconstructor()
	_, ok := r.Year()
	assert.False(t, ok)

	a := mustSegment(t, tornadoRow(1, "2000-05-03", "12:00:00", "OK", 1, 1, 1, 27))
	b := mustSegment(t, tornadoRow(2, "2000-06-03", "12:00:00", "OK", 1, 1, 1, 27))
	c := mustSegment(t, tornadoRow(1, "2001-04-03", "12:00:00", "KS", 1, 1, 1, 35))

	assert.ErrorIs(t, r.Add(a), ErrNotAccumulating)

	assert.Empty(t, r.Consume(a).Tracks)
	assert.Empty(t, r.Consume(b).Tracks)
	year, ok := r.Year()
	assert.True(t, ok)
	assert.Equal(t, 2000, year)

	assert.ErrorIs(t, r.Add(c), ErrYearMismatch)

	flushed := r.Consume(c)
	require.Len(t, flushed.Tracks, 2)
	assert.Equal(t, 1, flushed.Tracks[0].EventID())
	assert.Equal(t, 2, flushed.Tracks[1].EventID())

	// The same event id in a new year is a different tornado.
	last := r.Flush()
	require.Len(t, last.Tracks, 1)
	assert.Equal(t, []string{"KS"}, last.Tracks[0].States())

	_, ok = r.Year()
	assert.False(t, ok)
	assert.Empty(t, r.Flush().Tracks)
}

func TestReconstructor_SplitCorrection(t *testing.T) {
	rows := []RawRow{
		tornadoRow(74, "1993-06-07", "16:00:00", "KS", 3, 1, 1, 1),
		tornadoRow(74, "1993-06-07", "16:00:00", "IA", 3, 1, 1, 5),
		tornadoRow(74, "1993-06-07", "16:00:00", "IA", 3, 1, 2, 7),
	}

	t.Run("without the correction the event is incomplete", func(t *testing.T) {
		tracks, incomplete, err := BuildTornadoes(rows, WithCorrections(nil))
		require.NoError(t, err)
		assert.Zero(t, tracks.Len())
		require.Len(t, incomplete, 1)
		assert.Equal(t, []string{"KS", "IA"}, incomplete[0].States)
		assert.Equal(t, 3, incomplete[0].DeclaredStates)
	})

	t.Run("the correction supplies the Nebraska fragment", func(t *testing.T) {
		tracks, incomplete, err := BuildTornadoes(rows)
		require.NoError(t, err)
		assert.Empty(t, incomplete)
		require.Equal(t, 1, tracks.Len())

		tr := tracks.At(0)
		require.Len(t, tr.Segments(), 3)
		assert.Equal(t, []string{"KS", "IA", "NE"}, tr.States())
		assert.Equal(t, []int{20001, 19005, 19007, 31065}, tr.Counties())
		assert.Equal(t, 40.02, tr.EndLat())
		assert.Equal(t, -99.92, tr.EndLon())
	})

	t.Run("other years are untouched", func(t *testing.T) {
		shifted := make([]RawRow, len(rows))
		for i, r := range rows {
			r.Date = "1994-06-07"
			shifted[i] = r
		}
		_, incomplete, err := BuildTornadoes(shifted)
		require.NoError(t, err)
		assert.Len(t, incomplete, 1)
	})
}

func TestReconstructor_SplitCorrectionUsesSegmentNumber(t *testing.T) {
	rows := []RawRow{
		tornadoRow(80, "2006-03-11", "18:00:00", "MO", 2, 1, 2, 186),
		tornadoRow(80, "2006-03-11", "18:00:00", "MO", 2, 1, 1, 187),
	}
	tracks, incomplete, err := BuildTornadoes(rows)
	require.NoError(t, err)
	assert.Empty(t, incomplete)
	require.Equal(t, 1, tracks.Len())

	tr := tracks.At(0)
	assert.Equal(t, []string{"MO", "IL"}, tr.States())
	il := tr.Segment(1)
	assert.Equal(t, []int{17157, 17145}, il.Counties)
	assert.Equal(t, 1, il.SegmentNum)
	assert.Equal(t, 37.78, il.StartLat)
}
