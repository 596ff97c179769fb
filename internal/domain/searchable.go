package domain

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Item is a record that can be searched: it answers attribute lookups by
// public or canonical name and fails with ErrUnknownAttribute otherwise.
type Item interface {
	Get(attr string) (any, error)
}

// Matches reports whether item satisfies every criterion. Evaluation stops at
// the first failing criterion.
func Matches(item Item, criteria Criteria) (bool, error) {
	compiled, err := compileCriteria(criteria)
	if err != nil {
		return false, err
	}
	return matchCompiled(item, compiled)
}

func compileCriteria(criteria Criteria) ([]compiledCriterion, error) {
	attrs := make([]string, 0, len(criteria))
	for attr := range criteria {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	compiled := make([]compiledCriterion, 0, len(attrs))
	for _, attr := range attrs {
		cc, err := criteria[attr].compile(attr)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cc)
	}
	return compiled, nil
}

func matchCompiled(item Item, compiled []compiledCriterion) (bool, error) {
	for _, cc := range compiled {
		v, err := item.Get(cc.attr)
		if err != nil {
			return false, err
		}
		ok, err := cc.match(v)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Collection is an ordered, read-only sequence of searchable items. Order is
// preserved through every operation; for hazard datasets it is chronological.
type Collection[T Item] struct {
	items []T
}

// NewCollection copies items into a new collection.
func NewCollection[T Item](items []T) *Collection[T] {
	return &Collection[T]{items: slices.Clone(items)}
}

func (c *Collection[T]) Len() int { return len(c.items) }

// At returns the i'th item. It panics if i is out of range, like a slice index.
func (c *Collection[T]) At(i int) T { return c.items[i] }

// Slice returns the items in [i, j) as a new collection.
func (c *Collection[T]) Slice(i, j int) *Collection[T] {
	return NewCollection(c.items[i:j])
}

// Items returns a copy of the underlying items.
func (c *Collection[T]) Items() []T { return slices.Clone(c.items) }

// All iterates over the items in order.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return slices.All(c.items)
}

// Search returns a new collection holding the items that match criteria. The
// receiver is never modified, so a collection can be searched concurrently.
func (c *Collection[T]) Search(criteria Criteria) (*Collection[T], error) {
	compiled, err := compileCriteria(criteria)
	if err != nil {
		return nil, err
	}

	var out []T
	for i, item := range c.items {
		ok, err := matchCompiled(item, compiled)
		if err != nil {
			return nil, fmt.Errorf("search item %d: %w", i, err)
		}
		if ok {
			out = append(out, item)
		}
	}
	return &Collection[T]{items: out}, nil
}

// Column extracts one attribute from every item, in order.
func (c *Collection[T]) Column(attr string) ([]any, error) {
	col := make([]any, 0, len(c.items))
	for i, item := range c.items {
		v, err := item.Get(attr)
		if err != nil {
			return nil, fmt.Errorf("column item %d: %w", i, err)
		}
		col = append(col, v)
	}
	return col, nil
}

// String renders a numbered listing with one line per item.
func (c *Collection[T]) String() string {
	places := len(strconv.Itoa(len(c.items)))

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", places+2))
	b.WriteString("---Time-(UTC)--- ")
	b.WriteString(" --States--")
	b.WriteString(" -Mag-")

	for i, item := range c.items {
		fmt.Fprintf(&b, "\n%*d. %v", places, i+1, item)
	}
	if len(c.items) == 0 {
		b.WriteString("\n   [              None              ]")
	}
	return b.String()
}
