package domain

import "slices"

// Correction is a manually verified fix for a known error in the source data.
// It targets the segments of one event in one year, optionally narrowed to a
// reporting state and a segment number.
type Correction struct {
	Year       int
	EventID    int
	State      string // empty matches any state
	SegmentNum int    // zero matches any segment number
	// Split corrections append a patched copy of the first matching segment
	// to the event instead of amending segments in place. They run once per
	// event, before the completeness check.
	Split bool
	Note  string
	Patch func(*Segment)
}

func (c Correction) applies(s *Segment) bool {
	return s.Year() == c.Year &&
		s.EventID == c.EventID &&
		(c.State == "" || s.State == c.State) &&
		(c.SegmentNum == 0 || s.SegmentNum == c.SegmentNum)
}

// KnownCorrections is the fixed table of event-level fixes.
var KnownCorrections = []Correction{
	{Year: 1953, EventID: 265, State: "IA", Note: "duplicate event id", Patch: setEventID(263)},
	{Year: 1961, EventID: 456, State: "SD", Note: "duplicate event id", Patch: setEventID(454)},
	{Year: 1966, EventID: 13, Note: "wrong county", Patch: setCounties(51083)},
	{Year: 1966, EventID: 14, Note: "wrong county", Patch: setCounties(51081)},
	{Year: 1995, EventID: 9999, State: "IA", Note: "duplicate event id", Patch: setEventID(9998)},
	{Year: 2015, EventID: 576455, State: "NE", Note: "duplicate event id", Patch: setEventID(576454)},
	{
		Year: 1993, EventID: 74, Split: true,
		Note: "missing Nebraska fragment",
		Patch: func(s *Segment) {
			s.State, s.StateFIPS, s.StateSeq = "NE", 31, 1
			s.Counties = []int{31065}
			s.EndLat, s.EndLon = 40.02, -99.92
		},
	},
	{
		Year: 2006, EventID: 80, SegmentNum: 1, Split: true,
		Note: "missing Illinois fragment",
		Patch: func(s *Segment) {
			s.State, s.StateFIPS, s.StateSeq = "IL", 17, 5
			s.Counties = []int{17157, 17145}
			s.StartLat, s.StartLon = 37.78, -90.05
		},
	},
}

func setEventID(id int) func(*Segment) {
	return func(s *Segment) { s.EventID = id }
}

func setCounties(codes ...int) func(*Segment) {
	return func(s *Segment) { s.Counties = slices.Clone(codes) }
}

// amend applies the in-place corrections that match s.
func amend(s *Segment, table []Correction) {
	for _, c := range table {
		if !c.Split && c.applies(s) {
			c.Patch(s)
		}
	}
}

// splitFragments appends, for each split correction matching the event, a patched copy
// of the first segment the correction applies to.
func splitFragments(segs []*Segment, table []Correction) []*Segment {
	out := segs
	for _, c := range table {
		if !c.Split {
			continue
		}
		for _, s := range segs {
			if c.applies(s) {
				patched := s.clone()
				c.Patch(patched)
				out = append(out, patched)
				break
			}
		}
	}
	return out
}

// countyReplacements maps retired or mistyped county codes to current ones.
var countyReplacements = []struct{ old, new int }{
	{46131, 46071}, // Washabaugh County, SD merged with Jackson County, SD
	{12025, 12086}, // Dade County, FL renamed Miami-Dade County
	{13597, 13197}, // Marion County, GA typo
	{51039, 51037}, // Charlotte County, VA typo
	{27002, 27003}, // Anoka County, MN typo
	{51123, 51800}, // Nansemond County, VA replaced by Suffolk City
	{46001, 46003}, // Aurora County, SD typo
	{29677, 29077}, // Greene County, MO typo
	{21022, 21033}, // Caldwell County, KY typo
	{42159, 42015}, // Bradford County, PA typo
	{2155, 2050},   // Bethel Census Area, old code
	{72008, 72005}, // Aguadilla, PR typo
	{2181, 2013},   // Aleutians East Borough, old code
	{46113, 46102}, // Shannon County, SD renamed Oglala Lakota County
}

// replaceCounties swaps in current county codes. When a replacement collides
// with a code already present the duplicate is dropped, keeping first order.
func replaceCounties(codes []int) []int {
	replaced := false
	for _, r := range countyReplacements {
		if i := slices.Index(codes, r.old); i >= 0 {
			codes[i] = r.new
			replaced = true
		}
	}
	if !replaced {
		return codes
	}
	out := make([]int, 0, len(codes))
	for _, c := range codes {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
