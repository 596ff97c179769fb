package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// convectiveOffset shifts a UTC time so that a convective day (12Z to 12Z)
// falls on a single calendar date.
const convectiveOffset = 12 * time.Hour

// ConvectiveDay returns 12Z on the day the convective day containing t began.
func ConvectiveDay(t time.Time) time.Time {
	s := t.Add(-convectiveOffset)
	return time.Date(s.Year(), s.Month(), s.Day(), 12, 0, 0, 0, s.Location())
}

// ByYear matches times whose convective day falls in one of the given years.
func ByYear(years ...int) Predicate {
	return func(v any) bool {
		t, ok := v.(time.Time)
		return ok && slices.Contains(years, t.Add(-convectiveOffset).Year())
	}
}

// ByMonth matches times whose convective day falls in one of the given months.
func ByMonth(months ...time.Month) Predicate {
	return func(v any) bool {
		t, ok := v.(time.Time)
		return ok && slices.Contains(months, t.Add(-convectiveOffset).Month())
	}
}

// ParseMonth accepts a full English month name or its three-letter
// abbreviation, case-insensitively.
func ParseMonth(name string) (time.Month, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || name == full[:3] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", name)
}

// ByConvectiveDay matches times within the 24 hours starting at 12Z on any of the given dates.
func ByConvectiveDay(days ...time.Time) Predicate {
	starts := make([]time.Time, len(days))
	for i, d := range days {
		starts[i] = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, d.Location())
	}
	return func(v any) bool {
		t, ok := v.(time.Time)
		if !ok {
			return false
		}
		for _, start := range starts {
			if !t.Before(start) && t.Before(start.Add(24*time.Hour)) {
				return true
			}
		}
		return false
	}
}

// ByHour matches times whose UTC hour is one of the given hours.
func ByHour(hours ...int) Predicate {
	return func(v any) bool {
		t, ok := v.(time.Time)
		return ok && slices.Contains(hours, t.UTC().Hour())
	}
}

// AtLeast matches numeric values >= lo.
func AtLeast(lo float64) Predicate {
	return func(v any) bool {
		f, ok := toFloat(v)
		return ok && f >= lo
	}
}

// AtMost matches numeric values <= hi.
func AtMost(hi float64) Predicate {
	return func(v any) bool {
		f, ok := toFloat(v)
		return ok && f <= hi
	}
}

// Between matches numeric values in [lo, hi].
func Between(lo, hi float64) Predicate {
	return func(v any) bool {
		f, ok := toFloat(v)
		return ok && f >= lo && f <= hi
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	default:
		return 0, false
	}
}
