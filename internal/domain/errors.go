package domain

import "errors"

var (
	// ErrUnknownAttribute is returned when an attribute name does not resolve
	// to a field of the record kind being queried.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrUncoercible is returned when a criterion value is neither a predicate
	// nor something that can be turned into a set of scalars.
	ErrUncoercible = errors.New("value cannot be coerced to a set")

	// ErrEmptyTrack is returned when a track is built from zero segments.
	ErrEmptyTrack = errors.New("track requires at least one segment")

	// ErrMalformedRow is returned when a raw row cannot be unpacked.
	ErrMalformedRow = errors.New("malformed row")

	// ErrNotAccumulating is returned when a segment is added to an idle reconstructor.
	ErrNotAccumulating = errors.New("reconstructor is not accumulating a year")

	// ErrYearMismatch is returned when a segment's year differs from the year
	// the reconstructor is accumulating.
	ErrYearMismatch = errors.New("segment year does not match accumulating year")

	// ErrUngroupable is returned when a grouping key is a list value.
	ErrUngroupable = errors.New("attribute value cannot be used as a group key")
)
