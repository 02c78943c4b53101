package attendance

import "time"

// CanTransition reports whether the requested action is legal from the
// current state. Check-in is legal only from not_started, check-out only
// from checked_in.
func CanTransition(current State, action Action) bool {
	switch action {
	case ActionCheckIn:
		return current == StateNotStarted
	case ActionCheckOut:
		return current == StateCheckedIn
	default:
		return false
	}
}

// Apply runs the requested transition against a copy of day and returns the
// new record. Duplicate requests surface ErrAlreadyCheckedIn or
// ErrAlreadyCheckedOut so callers can treat retries as a no-op success;
// impossible requests surface ErrIllegalTransition.
func Apply(day Day, action Action, ts time.Time, method string, confidence float64, sched Schedule, graceMinutes int) (Day, error) {
	switch action {
	case ActionCheckIn:
		switch day.State {
		case StateCheckedIn:
			return day, ErrAlreadyCheckedIn
		case StateCheckedOut:
			return day, ErrIllegalTransition
		}
		t := ts
		day.State = StateCheckedIn
		day.CheckInAt = &t
		day.CheckInMethod = method
		day.CheckInConfidence = confidence
		if !sched.Start.IsZero() {
			day.Late = ts.After(sched.Start.Add(time.Duration(graceMinutes) * time.Minute))
		}
		return day, nil

	case ActionCheckOut:
		switch day.State {
		case StateNotStarted:
			return day, ErrIllegalTransition
		case StateCheckedOut:
			return day, ErrAlreadyCheckedOut
		}
		t := ts
		day.State = StateCheckedOut
		day.CheckOutAt = &t
		day.CheckOutMethod = method
		day.CheckOutConfidence = confidence
		if !sched.End.IsZero() {
			day.EarlyLeave = ts.Before(sched.End)
		}
		return day, nil

	default:
		return day, ErrUnknownAction
	}
}
