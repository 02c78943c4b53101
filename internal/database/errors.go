package database

import "errors"

var (
	// ErrNotFound keeps storage-level misses consistent across backends.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateDay signals a CreateDay against an existing
	// (employee, date) key. It is the storage-level backstop for the
	// one-day-per-employee invariant.
	ErrDuplicateDay = errors.New("attendance day already exists")
)
