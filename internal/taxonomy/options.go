package taxonomy

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is wrapped by Validate for unknown option values.
var ErrInvalidOptions = errors.New("invalid tag tree options")

// SiblingOrder controls how children of the same parent are ordered.
type SiblingOrder string

// Supported sibling orderings.
const (
	OrderSorted    SiblingOrder = "sorted"
	OrderInsertion SiblingOrder = "insertion"
)

// DuplicatePolicy decides which record wins when two records share a path.
type DuplicatePolicy string

// Supported duplicate policies.
const (
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	DuplicateKeepFirst DuplicatePolicy = "keep_first"
	DuplicateFail      DuplicatePolicy = "fail"
)

// EmptySegments decides what happens to "a//b" style paths.
type EmptySegments string

// Supported empty-segment handling modes.
const (
	EmptySkip   EmptySegments = "skip"
	EmptyReject EmptySegments = "reject"
)

// Options configures Build. The zero value is equivalent to DefaultOptions.
type Options struct {
	Order         SiblingOrder    `json:"order"`
	Duplicates    DuplicatePolicy `json:"duplicates"`
	EmptySegments EmptySegments   `json:"empty_segments"`
}

// DefaultOptions returns sorted siblings, last-write-wins duplicates and
// skipped empty segments.
func DefaultOptions() Options {
	return Options{
		Order:         OrderSorted,
		Duplicates:    DuplicateOverwrite,
		EmptySegments: EmptySkip,
	}
}

// withDefaults fills unset fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.Order == "" {
		o.Order = d.Order
	}

	if o.Duplicates == "" {
		o.Duplicates = d.Duplicates
	}

	if o.EmptySegments == "" {
		o.EmptySegments = d.EmptySegments
	}

	return o
}

// Validate returns an error naming the first unknown option value.
func (o Options) Validate() error {
	o = o.withDefaults()

	switch o.Order {
	case OrderSorted, OrderInsertion:
	default:
		return fmt.Errorf("%w: unknown sibling order %q (want sorted or insertion)", ErrInvalidOptions, o.Order)
	}

	switch o.Duplicates {
	case DuplicateOverwrite, DuplicateKeepFirst, DuplicateFail:
	default:
		return fmt.Errorf("%w: unknown duplicate policy %q (want overwrite, keep_first or fail)", ErrInvalidOptions, o.Duplicates)
	}

	switch o.EmptySegments {
	case EmptySkip, EmptyReject:
	default:
		return fmt.Errorf("%w: unknown empty segment mode %q (want skip or reject)", ErrInvalidOptions, o.EmptySegments)
	}

	return nil
}
