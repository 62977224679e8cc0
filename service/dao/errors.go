package dao

import "errors"

// Common, reusable DAO errors. Sentinel variables let callers detect error
// conditions via errors.Is/As instead of brittle string comparisons.

var (
	// ErrNotFound is returned when the requested record does not exist in
	// the underlying storage and absence is not a legitimate answer.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied ID/key is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)
