// Package verification composes the face matcher, the geofence validator,
// and the attendance state machine into one decision per check-in or
// check-out attempt, and owns the transactional commit of the resulting
// state transition.
package verification

import (
	"errors"
	"time"

	"github.com/kozaktomas/attendance-gate/internal/attendance"
	"github.com/kozaktomas/attendance-gate/internal/geofence"
)

// Outcome is the closed set of decision results. Policy-expected rejections
// are outcomes, never errors; callers branch on them as routine business
// results.
type Outcome string

const (
	OutcomeAccepted          Outcome = "accepted"
	OutcomeAlreadyCheckedIn  Outcome = "already_checked_in"
	OutcomeAlreadyCheckedOut Outcome = "already_checked_out"
	OutcomeRejectedFace      Outcome = "rejected_face"
	OutcomeRejectedLocation  Outcome = "rejected_location"
	OutcomeRejectedState     Outcome = "rejected_state"
	OutcomeManualReview      Outcome = "manual_review"
)

var (
	// ErrInvalidAttempt marks malformed input (empty employee id, missing
	// probe, unknown action). Surfaced immediately, never retried.
	ErrInvalidAttempt = errors.New("invalid verification attempt")
	// ErrBusy is the retryable fast-fail when the per-employee critical
	// section cannot be acquired within the configured bound.
	ErrBusy = errors.New("attendance record busy, retry")
)

// Attempt is one inbound verification request. It is ephemeral; the engine
// never persists it.
type Attempt struct {
	EmployeeID string
	Action     attendance.Action
	Probe      []float32
	Latitude   *float64
	Longitude  *float64
	WifiSSID   string
	Timestamp  time.Time
	DeviceID   string
}

// Validate rejects attempts the engine cannot evaluate at all.
func (a Attempt) Validate() error {
	if a.EmployeeID == "" {
		return errors.Join(ErrInvalidAttempt, errors.New("employee id is required"))
	}
	if len(a.Probe) == 0 {
		return errors.Join(ErrInvalidAttempt, errors.New("probe descriptor is required"))
	}
	if a.Action != attendance.ActionCheckIn && a.Action != attendance.ActionCheckOut {
		return errors.Join(ErrInvalidAttempt, attendance.ErrUnknownAction)
	}
	return nil
}

// Decision is the orchestrator's output. It carries enough structured detail
// for an actionable client message (which signal failed, score, distance)
// without exposing any other employee's biometric data.
type Decision struct {
	Outcome    Outcome
	Confidence float64

	FaceScore      float64
	DistanceMeters *float64
	LocationReason geofence.Reason

	// DayState is set when the attempt reached or resolved against the
	// attendance record (accepted and already_* outcomes).
	DayState attendance.State
	Late     bool
}

// combinedConfidence fuses the face score with the location evidence. When a
// GPS distance was evaluated, proximity contributes 30%; otherwise the face
// score stands alone. The weights are fixed so identical inputs always
// produce identical confidence.
func combinedConfidence(faceScore float64, loc geofence.Result, radius float64) float64 {
	if loc.DistanceMeters == nil || radius <= 0 {
		return faceScore
	}
	proximity := 100 * (1 - *loc.DistanceMeters/radius)
	if proximity < 0 {
		proximity = 0
	}
	if proximity > 100 {
		proximity = 100
	}
	return 0.7*faceScore + 0.3*proximity
}
