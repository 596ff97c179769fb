package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var stateFIPS = map[string]int{"OK": 40, "KS": 20, "IA": 19, "NE": 31, "TX": 48, "MO": 29, "IL": 17, "SD": 46}

// tornadoRow builds a CST tornado row. Counties are county-local partials.
func tornadoRow(om int, date, clock, st string, ns, sn, sg int, counties ...int) RawRow {
	row := RawRow{
		EventID:    om,
		Date:       date,
		Time:       clock,
		TimeZone:   3,
		State:      st,
		StateFIPS:  stateFIPS[st],
		StateSeq:   1,
		Magnitude:  1,
		StartLat:   35.1,
		StartLon:   -97.4,
		EndLat:     35.3,
		EndLon:     -97.1,
		Length:     4.2,
		Width:      100,
		NumStates:  ns,
		StateNum:   sn,
		SegmentNum: sg,
	}
	copy(row.Counties[:], counties)
	return row
}

func mustSegment(t *testing.T, row RawRow) *Segment {
	t.Helper()
	seg, err := UnpackSegment(row)
	require.NoError(t, err)
	return seg
}

func mustTrack(t *testing.T, segs ...*Segment) *Track {
	t.Helper()
	tr, err := NewTrack(segs...)
	require.NoError(t, err)
	return tr
}
