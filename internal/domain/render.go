package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// efScaleStart is when ratings switched from the Fujita to the Enhanced Fujita scale.
var efScaleStart = time.Date(2007, time.February, 1, 0, 0, 0, 0, time.UTC)

const listingTime = "2006-01-02 15:04"

// MagnitudeLabel renders the rating as F<n> or EF<n> depending on the scale in
// use on the track's date; unrated tracks render as U.
func (t *Track) MagnitudeLabel() string {
	mag := "U"
	if m := t.Magnitude(); m >= 0 {
		mag = strconv.Itoa(m)
	}
	if t.Time().Before(efScaleStart) {
		return "F" + mag
	}
	return "EF" + mag
}

func (t *Track) String() string {
	return fmt.Sprintf("%16s %11s %5s", t.Time().Format(listingTime), strings.Join(t.States(), ", "), t.MagnitudeLabel())
}

// MagnitudeLabel renders wind as the first letter of the magnitude type and
// the speed (-- when unknown) and hail to two decimals.
func (r *Report) MagnitudeLabel() string {
	if r.Hazard == HazardHail {
		return fmt.Sprintf("%.2f", r.Magnitude)
	}
	if r.Magnitude == 0 {
		return "--"
	}
	prefix := ""
	if r.MagType != "" {
		prefix = r.MagType[:1]
	}
	return fmt.Sprintf("%s%d", prefix, int(r.Magnitude))
}

func (r *Report) String() string {
	return fmt.Sprintf("%16s %11s %5s", r.Time.Format(listingTime), r.State, r.MagnitudeLabel())
}
