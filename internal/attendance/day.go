// Package attendance owns the per-employee, per-day attendance state and its
// legal transitions. It is pure: Apply returns a new Day value and never
// persists anything.
package attendance

import (
	"errors"
	"time"
)

// State is the per-day attendance state. Days move strictly forward:
// not_started -> checked_in -> checked_out, with checked_out terminal for the
// calendar date. Re-opening a day is an administrative action outside this
// engine.
type State string

const (
	StateNotStarted State = "not_started"
	StateCheckedIn  State = "checked_in"
	StateCheckedOut State = "checked_out"
)

// Action is a requested attendance transition.
type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

var (
	// ErrIllegalTransition marks a transition the state machine forbids,
	// such as a check-out while the day is still not_started.
	ErrIllegalTransition = errors.New("illegal attendance transition")
	// ErrAlreadyCheckedIn is the recoverable outcome of a duplicate
	// check-in, so client retries are tolerated instead of hard-failing.
	ErrAlreadyCheckedIn = errors.New("already checked in for today")
	// ErrAlreadyCheckedOut is the recoverable outcome of a duplicate
	// check-out.
	ErrAlreadyCheckedOut = errors.New("already checked out for today")
	// ErrUnknownAction rejects actions outside the closed set.
	ErrUnknownAction = errors.New("unknown attendance action")
)

// Day is the authoritative attendance record for one (employee, date) pair.
// Exactly one Day exists per pair; the storage layer enforces this with a
// unique key.
type Day struct {
	EmployeeID string
	Date       time.Time // truncated to midnight UTC
	State      State

	CheckInAt         *time.Time
	CheckInMethod     string
	CheckInConfidence float64

	CheckOutAt         *time.Time
	CheckOutMethod     string
	CheckOutConfidence float64

	Late       bool
	EarlyLeave bool
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(ts time.Time) time.Time {
	return ts.UTC().Truncate(24 * time.Hour)
}

// NewDay returns a fresh not_started day for an employee.
func NewDay(employeeID string, date time.Time) Day {
	return Day{
		EmployeeID: employeeID,
		Date:       DateOf(date),
		State:      StateNotStarted,
	}
}

// Schedule is an employee's expected working window on a given date, used to
// classify lateness and early leave.
type Schedule struct {
	Start time.Time
	End   time.Time
}
