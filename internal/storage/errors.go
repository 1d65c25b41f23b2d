package storage

import dErrors "brokerage/pkg/domain-errors"

var (
	// ErrNotFound keeps storage-specific 404s consistent across the in-memory
	// and PostgreSQL implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

	// ErrDuplicate is returned when a unique key (national ID, policy number,
	// product or claim ID) is already taken. Uniqueness lives here, not in
	// the domain core.
	ErrDuplicate = dErrors.New(dErrors.CodeConflict, "record already exists")
)

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeNotFound)
}

// IsDuplicate reports whether err is a unique-key violation.
func IsDuplicate(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeConflict)
}
