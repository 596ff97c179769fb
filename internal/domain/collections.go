package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tornadoes, WindReports and HailReports are the hazard collections. Search
// on any of them returns the same kind of collection.
type (
	Tornadoes   = Collection[*Track]
	WindReports = Collection[*Report]
	HailReports = Collection[*Report]
)

// BuildTornadoes unpacks rows into segments and reconstructs tracks. Rows must
// be ordered by year. A malformed row aborts the build; incomplete events are
// returned alongside the collection rather than failing it.
func BuildTornadoes(rows []RawRow, opts ...ReconstructorOption) (*Tornadoes, []IncompleteBucket, error) {
	r := NewReconstructor(opts...)
	var res FlushResult
	for i, row := range rows {
		seg, err := UnpackSegment(row)
		if err != nil {
			return nil, nil, fmt.Errorf("tornado row %d: %w", i+1, err)
		}
		res.append(r.Consume(seg))
	}
	res.append(r.Flush())
	return &Tornadoes{items: res.Tracks}, res.Incomplete, nil
}

// BuildReports unpacks wind or hail rows, one report per row.
func BuildReports(h Hazard, rows []RawRow) (*Collection[*Report], error) {
	reports := make([]*Report, 0, len(rows))
	for i, row := range rows {
		rep, err := UnpackReport(h, row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", h, i+1, err)
		}
		reports = append(reports, rep)
	}
	return &Collection[*Report]{items: reports}, nil
}

// Group is the subset of a collection sharing one key.
type Group[T Item] struct {
	Key   any
	Items *Collection[T]
}

// GroupBy partitions the collection by an attribute, in order of first
// appearance. A time attribute may be narrowed with a suffix, e.g.
// "datetime.year", ".month", ".day" or ".hour". List-valued attributes cannot
// be grouped on.
func (c *Collection[T]) GroupBy(attr string) ([]Group[T], error) {
	base, sub, _ := strings.Cut(attr, ".")

	var keys []any
	groups := make(map[any][]T)
	for _, item := range c.items {
		v, err := item.Get(base)
		if err != nil {
			return nil, err
		}
		if sub != "" {
			if v, err = timePart(v, sub); err != nil {
				return nil, fmt.Errorf("group by %q: %w", attr, err)
			}
		}
		key, ok := groupKey(v)
		if !ok {
			return nil, fmt.Errorf("group by %q: %w: %T", attr, ErrUngroupable, v)
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], item)
	}

	out := make([]Group[T], 0, len(keys))
	for _, k := range keys {
		out = append(out, Group[T]{Key: k, Items: &Collection[T]{items: groups[k]}})
	}
	return out, nil
}

// groupKey keeps the value's own type so group keys read naturally; times
// are normalized to UTC.
func groupKey(v any) (any, bool) {
	if _, ok := scalarKey(v); !ok {
		return nil, false
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC(), true
	}
	return v, true
}

func timePart(v any, part string) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("%w: %q of %T", ErrUnknownAttribute, part, v)
	}
	switch part {
	case "year":
		return t.Year(), nil
	case "month":
		return int(t.Month()), nil
	case "day":
		return t.Day(), nil
	case "hour":
		return t.Hour(), nil
	default:
		return nil, fmt.Errorf("%w: time part %q", ErrUnknownAttribute, part)
	}
}

// Day is the subset of a collection within one convective day.
type Day[T Item] struct {
	Day   time.Time // 12Z on the date the convective day began
	Items *Collection[T]
}

// Days buckets the collection by convective day, in chronological order.
func (c *Collection[T]) Days() ([]Day[T], error) {
	buckets := make(map[time.Time][]T)
	for _, item := range c.items {
		v, err := item.Get(AttrTime)
		if err != nil {
			return nil, err
		}
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("days: %q is %T, not a time", AttrTime, v)
		}
		d := ConvectiveDay(t.UTC())
		buckets[d] = append(buckets[d], item)
	}

	days := make([]Day[T], 0, len(buckets))
	for d, items := range buckets {
		days = append(days, Day[T]{Day: d, Items: &Collection[T]{items: items}})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}
