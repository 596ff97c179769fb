package domain

// RawRow is one tokenized row of an SPC severe report database file. The
// column-to-field mapping lives in the CSV adapter; the core only relies on the
// field types.
type RawRow struct {
	EventID  int    // om
	Year     int    // yr
	Month    int    // mo
	Day      int    // dy
	Date     string // YYYY-MM-DD
	Time     string // HH:MM:SS
	TimeZone int    // 3 = CST, 9 = GMT

	State     string
	StateFIPS int
	StateSeq  int // stn

	Magnitude  float64 // (E)F rating, wind knots, or hail inches
	Injuries   int
	Fatalities int
	Loss       float64
	CropLoss   float64

	StartLat float64
	StartLon float64
	EndLat   float64
	EndLon   float64
	Length   float64 // miles
	Width    int     // yards

	NumStates  int    // ns
	StateNum   int    // sn
	SegmentNum int    // sg
	Counties   [4]int // f1..f4, county-local FIPS partials

	FScaleMod int    // fc
	MagType   string // mt, wind only
}

// resetOverflow zeroes the per-segment measurements on continuation rows that
// only exist to carry additional county partials.
func (r *RawRow) resetOverflow() {
	r.StateNum = 0
	r.SegmentNum = -9
	r.StartLat, r.StartLon = 0, 0
	r.EndLat, r.EndLon = 0, 0
	r.Width = 0
	r.Length = 0
	r.Injuries, r.Fatalities = 0, 0
	r.Loss, r.CropLoss = 0, 0
}
