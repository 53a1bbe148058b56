package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingName      = errors.New("name is required")
	ErrMissingReference = errors.New("reference is required")
	ErrInvalidField     = errors.New("invalid field")
)

// Sentinel errors for entity lookups.
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrMetadataNotFound = errors.New("metadata not stored")
)

// ErrNoUsableMetadata means every lookup step was exhausted without a
// record carrying a non-empty abstract.
var ErrNoUsableMetadata = errors.New("no usable metadata")

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrFieldTooLong returns an ErrInvalidField for a field over maxLen.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%w: %s exceeds maximum length of %d", ErrInvalidField, field, maxLen)
}
