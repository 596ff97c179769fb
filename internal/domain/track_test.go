package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStateTrack(t *testing.T) *Track {
	t.Helper()
	start := time.Date(2011, 4, 27, 21, 5, 0, 0, time.UTC)
	ok := &Segment{
		EventID: 10, Time: start, State: "OK", StateFIPS: 40,
		Magnitude: 2, Width: 200, Loss: 5, Length: 10, Injuries: 3, Fatalities: 1,
		StartLat: 35, StartLon: -98, EndLat: 36, EndLon: -97,
		NumStates: 2, StateNum: 1, SegmentNum: 1, Counties: []int{40001, 40003},
	}
	ks := &Segment{
		EventID: 10, Time: start.Add(30 * time.Minute), State: "KS", StateFIPS: 20,
		Magnitude: 3, Width: 150, Loss: 7, Length: 5, Injuries: 2, Fatalities: 0, FScaleMod: 1,
		StartLat: 36, StartLon: -97, EndLat: 37, EndLon: -96,
		NumStates: 2, StateNum: 2, SegmentNum: 1, Counties: []int{20001},
	}
	return mustTrack(t, ok, ks)
}

func TestNewTrack_Empty(t *testing.T) {
	_, err := NewTrack()
	assert.ErrorIs(t, err, ErrEmptyTrack)
}

func TestTrack_Aggregates(t *testing.T) {
	tr := twoStateTrack(t)

	tests := []struct {
		attr string
		want any
	}{
		{"magnitude", 3},
		{"width", 200},
		{"loss", 7.0},
		{"closs", 0.0},
		{"fc", 1},
		{"length", 10.0},
		{"injuries", 3},
		{"fatalities", 1},
		{"time", time.Date(2011, 4, 27, 21, 5, 0, 0, time.UTC)},
		{"start_lat", 35.0},
		{"start_lon", -98.0},
		{"end_lat", 37.0},
		{"end_lon", -96.0},
		{"counties", []int{40001, 40003, 20001}},
		{"state", []any{"OK", "KS"}},
		{"om", []any{10, 10}},
		{"sn", []any{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			got, err := tr.Get(tt.attr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := tr.Get("tornado_speed")
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestTrack_TotalsPolicy(t *testing.T) {
	tr := twoStateTrack(t)
	summed := tr.WithTotals(TotalsSum)

	assert.Equal(t, 10.0, tr.Length())
	assert.Equal(t, 15.0, summed.Length())
	assert.Equal(t, 3, tr.Injuries())
	assert.Equal(t, 5, summed.Injuries())
	assert.Equal(t, 1, summed.Fatalities())

	p, err := ParseTotalsPolicy("sum")
	require.NoError(t, err)
	assert.Equal(t, TotalsSum, p)
	assert.Equal(t, "sum", p.String())
	_, err = ParseTotalsPolicy("mean")
	assert.Error(t, err)
}

func TestTrack_MagnitudeLabel(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
		mag  int
		want string
	}{
		{"Fujita scale", time.Date(2007, 1, 31, 23, 0, 0, 0, time.UTC), 2, "F2"},
		{"Enhanced Fujita scale", time.Date(2007, 2, 1, 0, 0, 0, 0, time.UTC), 2, "EF2"},
		{"unrated", time.Date(2016, 5, 9, 0, 0, 0, 0, time.UTC), -1, "EFU"},
		{"unrated before EF", time.Date(1999, 5, 3, 0, 0, 0, 0, time.UTC), -1, "FU"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustTrack(t, &Segment{Time: tt.when, Magnitude: tt.mag, State: "OK"})
			assert.Equal(t, tt.want, tr.MagnitudeLabel())
		})
	}
}

func TestTrack_RowsRoundTrip(t *testing.T) {
	t.Run("single segment", func(t *testing.T) {
		seg := mustSegment(t, tornadoRow(3, "2011-04-27", "15:05:00", "OK", 1, 1, 1, 27, 109))
		rows := mustTrack(t, seg).Rows()
		require.Len(t, rows, 1)
		assert.Equal(t, 3, rows[0].TimeZone)
		assert.Equal(t, "15:05:00", rows[0].Time)

		back := mustSegment(t, rows[0])
		if diff := cmp.Diff(seg, back); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("county overflow", func(t *testing.T) {
		seg := mustSegment(t, tornadoRow(3, "2011-04-27", "15:05:00", "OK", 1, 1, 1))
		seg.Injuries = 4
		seg.Counties = []int{40001, 40003, 40005, 40007, 40009, 40011}

		rows := mustTrack(t, seg).Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, [4]int{1, 3, 5, 7}, rows[0].Counties)
		assert.Equal(t, 4, rows[0].Injuries)
		assert.Equal(t, [4]int{9, 11, 0, 0}, rows[1].Counties)
		assert.Equal(t, -9, rows[1].SegmentNum)
		assert.Zero(t, rows[1].StateNum)
		assert.Zero(t, rows[1].Injuries)

		tracks, incomplete, err := BuildTornadoes(rows)
		require.NoError(t, err)
		assert.Empty(t, incomplete)
		require.Equal(t, 1, tracks.Len())
		if diff := cmp.Diff(seg, tracks.At(0).Segment(0)); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("multi-state summary row", func(t *testing.T) {
		okRow := tornadoRow(20, "2011-04-27", "15:05:00", "OK", 2, 1, 1, 27, 109)
		ksRow := tornadoRow(20, "2011-04-27", "15:35:00", "KS", 2, 2, 1, 35)
		ksRow.Magnitude = 3
		ksRow.Length = 6.5

		tracks, _, err := BuildTornadoes([]RawRow{okRow, ksRow})
		require.NoError(t, err)
		require.Equal(t, 1, tracks.Len())
		tr := tracks.At(0)

		rows := tr.Rows()
		require.Len(t, rows, 3)
		summary := rows[0]
		assert.Equal(t, 0, summary.StateNum)
		assert.Equal(t, 1, summary.SegmentNum)
		assert.Equal(t, 3.0, summary.Magnitude)
		assert.Equal(t, [4]int{}, summary.Counties)
		assert.Equal(t, "15:05:00", summary.Time)

		again, incomplete, err := BuildTornadoes(rows)
		require.NoError(t, err)
		assert.Empty(t, incomplete)
		require.Equal(t, 1, again.Len())
		if diff := cmp.Diff(tr.Segments(), again.At(0).Segments()); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestTrack_Summary(t *testing.T) {
	s := twoStateTrack(t).Summary()
	assert.Equal(t, "tornado-2011-10", s.ID)
	assert.Equal(t, "EF3", s.MagnitudeLabel)
	assert.Equal(t, []string{"OK", "KS"}, s.States)
	assert.Equal(t, 2, s.Segments)
	assert.Equal(t, 3.0, s.Magnitude)
}

func TestReport_Labels(t *testing.T) {
	when := time.Date(2011, 4, 27, 20, 5, 0, 0, time.UTC)
	tests := []struct {
		name string
		rep  Report
		want string
	}{
		{"measured gust", Report{Hazard: HazardWind, Magnitude: 65, MagType: "MG"}, "M65"},
		{"unknown speed", Report{Hazard: HazardWind}, "--"},
		{"hail size", Report{Hazard: HazardHail, Magnitude: 1.75}, "1.75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rep.Time = when
			assert.Equal(t, tt.want, tt.rep.MagnitudeLabel())
		})
	}

	rep := Report{Hazard: HazardHail, EventID: 8, Time: when, State: "KS", Magnitude: 2}
	assert.Equal(t, "hail-2011-8", rep.Summary().ID)
	assert.Equal(t, 1, rep.Summary().Segments)
}
