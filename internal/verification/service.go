package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/attendance-gate/internal/attendance"
	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/geofence"
	"github.com/kozaktomas/attendance-gate/internal/policy"
)

// checkMethod tags transitions committed by this engine.
const checkMethod = "face"

// Service is the verification orchestrator: the single entry point that
// turns an attempt into a decision and commits at most one state transition
// per employee per day.
type Service struct {
	descriptors database.DescriptorReader
	employees   database.EmployeeReader
	fences      database.GeofenceReader
	policies    database.PolicyReader
	days        database.AttendanceWriter

	locks    *KeyedLock
	lockWait time.Duration
	metrics  *Metrics
}

// NewService wires the orchestrator. metrics may be nil (tests).
func NewService(
	descriptors database.DescriptorReader,
	employees database.EmployeeReader,
	fences database.GeofenceReader,
	policies database.PolicyReader,
	days database.AttendanceWriter,
	lockWait time.Duration,
	metrics *Metrics,
) *Service {
	return &Service{
		descriptors: descriptors,
		employees:   employees,
		fences:      fences,
		policies:    policies,
		days:        days,
		locks:       NewKeyedLock(),
		lockWait:    lockWait,
		metrics:     metrics,
	}
}

// Verify evaluates one attempt. Policy-expected rejections come back as
// Decision outcomes with a nil error; errors are reserved for malformed
// input and infrastructure failures. Everything before the commit step is
// pure computation, so cancelling the context before then has no side
// effects.
func (s *Service) Verify(ctx context.Context, attempt Attempt) (Decision, error) {
	start := time.Now()
	decision, err := s.verify(ctx, attempt)
	if err == nil {
		s.metrics.IncrementOutcome(decision.Outcome, string(attempt.Action))
		s.metrics.ObserveVerifyLatency(time.Since(start))
	}
	return decision, err
}

func (s *Service) verify(ctx context.Context, attempt Attempt) (Decision, error) {
	if err := attempt.Validate(); err != nil {
		return Decision{}, err
	}

	ts := attempt.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	emp, err := s.employees.Get(ctx, attempt.EmployeeID)
	if err != nil {
		return Decision{}, fmt.Errorf("loading employee %s: %w", attempt.EmployeeID, err)
	}

	// Descriptors, geofence, and policy are independent reads.
	loadStart := time.Now()
	var (
		enrolled []facematch.Descriptor
		fence    geofence.Geofence
		pol      policy.Policy
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enrolled, err = s.descriptors.GetByEmployee(gctx, emp.ID)
		return err
	})
	g.Go(func() error {
		f, err := s.fences.Get(gctx, emp.LocationID)
		if errors.Is(err, database.ErrNotFound) {
			// Unregistered location: no location signal available.
			fence = geofence.Geofence{LocationID: emp.LocationID}
			return nil
		}
		if err != nil {
			return err
		}
		fence = *f
		return nil
	})
	g.Go(func() error {
		var err error
		pol, err = s.policies.Effective(gctx, emp.LocationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Decision{}, fmt.Errorf("loading verification data: %w", err)
	}
	s.metrics.ObserveSignalLatency("load", time.Since(loadStart))

	faceStart := time.Now()
	match, err := facematch.Match(attempt.Probe, enrolled, pol.FaceThreshold, pol.DistanceNormalization)
	s.metrics.ObserveSignalLatency("face", time.Since(faceStart))
	if errors.Is(err, facematch.ErrNoEnrollment) {
		// No enrollment is not a low score; a human decides.
		return Decision{Outcome: OutcomeManualReview}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	locStart := time.Now()
	loc := geofence.Validate(geofence.Claim{
		Latitude:  attempt.Latitude,
		Longitude: attempt.Longitude,
		WifiSSID:  attempt.WifiSSID,
	}, fence, pol.RequiredSignals)
	s.metrics.ObserveSignalLatency("location", time.Since(locStart))

	decision := Decision{
		FaceScore:      match.Score,
		DistanceMeters: loc.DistanceMeters,
		LocationReason: loc.Reason,
		Confidence:     combinedConfidence(match.Score, loc, fence.RadiusMeters),
	}

	if !match.Passed {
		decision.Outcome = OutcomeRejectedFace
		return decision, nil
	}
	if !loc.Passed {
		decision.Outcome = OutcomeRejectedLocation
		return decision, nil
	}

	commitStart := time.Now()
	decision, err = s.commit(ctx, decision, emp, attempt.Action, ts, pol)
	s.metrics.ObserveSignalLatency("commit", time.Since(commitStart))
	return decision, err
}

// commit runs the read-apply-persist critical section for the attempt's
// (employee, date) key. Once entered, the transition runs to completion;
// partial application is never observable because the day record is written
// in a single statement.
func (s *Service) commit(ctx context.Context, decision Decision, emp *database.Employee, action attendance.Action, ts time.Time, pol policy.Policy) (Decision, error) {
	key := emp.ID + "@" + attendance.DateOf(ts).Format("2006-01-02")
	release, err := s.locks.Acquire(ctx, key, s.lockWait)
	if errors.Is(err, ErrBusy) {
		s.metrics.IncrementLockTimeout()
		return Decision{}, ErrBusy
	}
	if err != nil {
		return Decision{}, err
	}
	defer release()

	existing, err := s.days.GetDay(ctx, emp.ID, ts)
	if err != nil {
		return Decision{}, fmt.Errorf("reading attendance day: %w", err)
	}
	day := attendance.NewDay(emp.ID, ts)
	if existing != nil {
		day = *existing
	}

	applied, err := attendance.Apply(day, action, ts, checkMethod, decision.Confidence, emp.ScheduleFor(ts), pol.GraceMinutes)
	switch {
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		decision.Outcome = OutcomeAlreadyCheckedIn
		decision.DayState = day.State
		return decision, nil
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		decision.Outcome = OutcomeAlreadyCheckedOut
		decision.DayState = day.State
		return decision, nil
	case err != nil:
		decision.Outcome = OutcomeRejectedState
		decision.DayState = day.State
		return decision, nil
	}

	if existing == nil {
		err = s.days.CreateDay(ctx, applied)
		if errors.Is(err, database.ErrDuplicateDay) {
			// Lost the race against another instance; the other attempt
			// already committed this day's check-in.
			decision.Outcome = OutcomeAlreadyCheckedIn
			decision.DayState = attendance.StateCheckedIn
			return decision, nil
		}
	} else {
		err = s.days.UpdateDay(ctx, applied)
	}
	if err != nil {
		return Decision{}, fmt.Errorf("persisting attendance day: %w", err)
	}

	decision.Outcome = OutcomeAccepted
	decision.DayState = applied.State
	decision.Late = applied.Late
	return decision, nil
}

// DayState returns the current attendance state for an employee on the given
// date, defaulting to not_started when no record exists.
func (s *Service) DayState(ctx context.Context, employeeID string, date time.Time) (attendance.Day, error) {
	day, err := s.days.GetDay(ctx, employeeID, date)
	if err != nil {
		return attendance.Day{}, err
	}
	if day == nil {
		return attendance.NewDay(employeeID, date), nil
	}
	return *day, nil
}
