package domain

import (
	"fmt"
	"time"
)

const (
	// tzGMT is the SPC time zone code for times already recorded in UTC.
	tzGMT = 9
	// tzCST is the code written on output; CST is UTC-6.
	tzCST     = 3
	cstOffset = 6 * time.Hour
)

// parseTimestamp combines the date, time-of-day and time zone code of a raw
// row into one UTC instant. Any zone code other than GMT is treated as CST.
func parseTimestamp(date, clock string, tz int) (time.Time, error) {
	t, err := time.Parse(time.DateTime, date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q time %q: %w", ErrMalformedRow, date, clock, err)
	}
	if tz != tzGMT {
		t = t.Add(cstOffset)
	}
	return t, nil
}

// setLocalTime writes t back out as CST date/time fields.
func setLocalTime(row *RawRow, t time.Time) {
	local := t.UTC().Add(-cstOffset)
	row.Year = local.Year()
	row.Month = int(local.Month())
	row.Day = local.Day()
	row.Date = local.Format(time.DateOnly)
	row.Time = local.Format(time.TimeOnly)
	row.TimeZone = tzCST
}

// countyCodes combines the state FIPS prefix with each non-zero county partial.
func countyCodes(stateFIPS int, partials []int) []int {
	codes := make([]int, 0, len(partials))
	for _, p := range partials {
		if p != 0 {
			codes = append(codes, stateFIPS*1000+p)
		}
	}
	return codes
}

func countyPartials(codes []int) []int {
	partials := make([]int, len(codes))
	for i, c := range codes {
		partials[i] = c % 1000
	}
	return partials
}

// UnpackSegment builds a tornado segment from a raw row and applies the
// per-segment entries of the known-defect table. A row with an unparsable
// date or time produces no segment.
func UnpackSegment(row RawRow) (*Segment, error) {
	t, err := parseTimestamp(row.Date, row.Time, row.TimeZone)
	if err != nil {
		return nil, err
	}

	seg := &Segment{
		EventID:    row.EventID,
		Time:       t,
		State:      row.State,
		StateFIPS:  row.StateFIPS,
		StateSeq:   row.StateSeq,
		Magnitude:  int(row.Magnitude),
		Injuries:   row.Injuries,
		Fatalities: row.Fatalities,
		Loss:       row.Loss,
		CropLoss:   row.CropLoss,
		StartLat:   row.StartLat,
		StartLon:   row.StartLon,
		EndLat:     row.EndLat,
		EndLon:     row.EndLon,
		Length:     row.Length,
		Width:      row.Width,
		NumStates:  row.NumStates,
		StateNum:   row.StateNum,
		SegmentNum: row.SegmentNum,
		Counties:   countyCodes(row.StateFIPS, row.Counties[:]),
		FScaleMod:  row.FScaleMod,
	}

	// Brief touchdowns are recorded without an end point.
	if seg.EndLat < 10 {
		seg.EndLat = seg.StartLat
	}
	if seg.EndLon > -10 {
		seg.EndLon = seg.StartLon
	}

	seg.Counties = replaceCounties(seg.Counties)
	amend(seg, KnownCorrections)
	return seg, nil
}

// UnpackReport builds a wind or hail report from a raw row. Only the first
// county partial is kept; the track-shaped columns are dropped.
func UnpackReport(h Hazard, row RawRow) (*Report, error) {
	if h != HazardWind && h != HazardHail {
		return nil, fmt.Errorf("unpack %s row as report: %w", h, ErrMalformedRow)
	}
	t, err := parseTimestamp(row.Date, row.Time, row.TimeZone)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Hazard:     h,
		EventID:    row.EventID,
		Time:       t,
		State:      row.State,
		StateFIPS:  row.StateFIPS,
		StateSeq:   row.StateSeq,
		Magnitude:  row.Magnitude,
		Injuries:   row.Injuries,
		Fatalities: row.Fatalities,
		Loss:       row.Loss,
		CropLoss:   row.CropLoss,
		Lat:        row.StartLat,
		Lon:        row.StartLon,
		Counties:   countyCodes(row.StateFIPS, row.Counties[:1]),
	}
	if h == HazardWind {
		r.MagType = row.MagType
	}
	return r, nil
}
