package domain

import (
	"fmt"
	"reflect"
	"time"
)

// Predicate tests a single attribute value.
type Predicate func(v any) bool

type criterionKind int

const (
	criterionValues criterionKind = iota
	criterionPredicate
	criterionPredicates
)

// Criterion is one attribute test in a search. It is exactly one of: a set of
// values matched by overlap, a single predicate, or a list of predicates that
// must all hold. Build one with [Is], [Where] or [WhereAll].
type Criterion struct {
	kind   criterionKind
	preds  []Predicate
	values []any
}

// Criteria maps attribute names (public or canonical) to the test applied to them.
// An empty Criteria matches every item.
type Criteria map[string]Criterion

// Is matches when the attribute's value and the given values share at least one
// element. Scalars (including strings) count as one-element sets, lists as the
// set of their elements, so Is("OK") matches a track whose states are [OK KS].
func Is(values ...any) Criterion {
	return Criterion{kind: criterionValues, values: values}
}

// Where matches when p returns true for the attribute's value.
func Where(p Predicate) Criterion {
	return Criterion{kind: criterionPredicate, preds: []Predicate{p}}
}

// WhereAll matches when every predicate returns true for the attribute's value.
func WhereAll(ps ...Predicate) Criterion {
	return Criterion{kind: criterionPredicates, preds: ps}
}

// compiledCriterion holds the attribute name and, for set criteria, the
// precomputed value set so it is built once per search rather than per item.
type compiledCriterion struct {
	attr string
	Criterion
	want valueSet
}

func (c Criterion) compile(attr string) (compiledCriterion, error) {
	cc := compiledCriterion{attr: attr, Criterion: c}
	if c.kind != criterionValues {
		return cc, nil
	}
	want := valueSet{}
	for _, v := range c.values {
		s, err := toSet(v)
		if err != nil {
			return cc, fmt.Errorf("criterion %q: %w", attr, err)
		}
		for k := range s {
			want[k] = struct{}{}
		}
	}
	cc.want = want
	return cc, nil
}

func (cc compiledCriterion) match(v any) (bool, error) {
	switch cc.kind {
	case criterionPredicate, criterionPredicates:
		for _, p := range cc.preds {
			if !p(v) {
				return false, nil
			}
		}
		return true, nil
	default:
		have, err := toSet(v)
		if err != nil {
			return false, fmt.Errorf("attribute %q: %w", cc.attr, err)
		}
		return have.overlaps(cc.want), nil
	}
}

type valueSet map[any]struct{}

func (s valueSet) overlaps(other valueSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			return true
		}
	}
	return false
}

// toSet coerces a scalar or a list into a set of comparable keys. A string is
// a single element, never a sequence of characters.
func toSet(v any) (valueSet, error) {
	if k, ok := scalarKey(v); ok {
		return valueSet{k: {}}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: %T", ErrUncoercible, v)
	}
	s := make(valueSet, rv.Len())
	for i := range rv.Len() {
		elem := rv.Index(i).Interface()
		k, ok := scalarKey(elem)
		if !ok {
			return nil, fmt.Errorf("%w: element %T of %T", ErrUncoercible, elem, v)
		}
		s[k] = struct{}{}
	}
	return s, nil
}

// scalarKey normalizes a scalar so that equal values compare equal as map keys:
// integers and floats share one numeric key space, times compare as UTC instants.
func scalarKey(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return x, true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case time.Time:
		return x.UTC(), true
	default:
		return nil, false
	}
}
