package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingID      = errors.New("id is required")
	ErrMissingName    = errors.New("name is required")
	ErrMissingParent  = errors.New("parent_id is required")
	ErrMissingPartner = errors.New("partner_id is required")
	ErrEmptyBatch     = errors.New("pairs must not be empty")
	ErrBadRetention   = errors.New("retention_days out of range")
)

// Sentinel errors for entity lookups.
var (
	ErrPersonNotFound = errors.New("person not found")
	ErrLinkNotFound   = errors.New("link not found")
)

// Sentinel errors for family graph integrity.
var (
	// ErrCyclicAncestry rejects a parent link that would make a person their own ancestor.
	ErrCyclicAncestry = errors.New("link would create cyclic ancestry")

	// ErrSelfLink rejects linking a person to themselves.
	ErrSelfLink = errors.New("person cannot be linked to themselves")

	// ErrHasChildren rejects deleting a person that other people list as a parent.
	ErrHasChildren = errors.New("person still has children")

	// ErrInvalidImport rejects an import whose family graph fails validation.
	ErrInvalidImport = errors.New("import data failed validation")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}

// ErrBatchTooLarge returns an error for a batch over the configured pair limit.
func ErrBatchTooLarge(maxPairs int) error {
	return fmt.Errorf("batch exceeds maximum of %d pairs", maxPairs)
}
