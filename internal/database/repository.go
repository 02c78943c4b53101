// Package database defines the storage interfaces the verification engine
// consumes. Backends live in subpackages (postgres for production, mock for
// tests).
package database

import (
	"context"
	"time"

	"github.com/kozaktomas/attendance-gate/internal/attendance"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/geofence"
	"github.com/kozaktomas/attendance-gate/internal/policy"
)

// DescriptorReader provides read-only access to enrolled face descriptors.
type DescriptorReader interface {
	// GetByEmployee retrieves all active descriptors for an employee,
	// newest first. An employee with no enrollments yields an empty slice,
	// not an error.
	GetByEmployee(ctx context.Context, employeeID string) ([]facematch.Descriptor, error)
	// All retrieves every stored descriptor, used to build the
	// identification index on startup.
	All(ctx context.Context) ([]facematch.Descriptor, error)
	// Count returns the total number of descriptors stored.
	Count(ctx context.Context) (int, error)
}

// DescriptorWriter provides write access to enrolled face descriptors.
type DescriptorWriter interface {
	DescriptorReader

	// Save stores a new descriptor for an employee.
	Save(ctx context.Context, d facematch.Descriptor) error
	// DeleteByEmployee removes all descriptors for an employee, returning
	// how many were removed. Used by exclusive re-enrollment.
	DeleteByEmployee(ctx context.Context, employeeID string) (int, error)
}

// EmployeeReader resolves employees to their schedule and home location.
type EmployeeReader interface {
	// Get retrieves an employee, or ErrNotFound.
	Get(ctx context.Context, id string) (*Employee, error)
}

// GeofenceReader provides read-only access to location geofences.
type GeofenceReader interface {
	// Get retrieves the geofence for a location, or ErrNotFound.
	Get(ctx context.Context, locationID string) (*geofence.Geofence, error)
}

// GeofenceWriter provides write access to location geofences.
type GeofenceWriter interface {
	GeofenceReader

	// Save stores or replaces the geofence for a location.
	Save(ctx context.Context, fence geofence.Geofence) error
}

// PolicyReader resolves the effective verification policy for a location.
type PolicyReader interface {
	// Effective returns the location's policy override if one exists,
	// otherwise the global default. Never returns ErrNotFound.
	Effective(ctx context.Context, locationID string) (policy.Policy, error)
}

// PolicyWriter provides write access to per-location policy overrides.
type PolicyWriter interface {
	PolicyReader

	// SaveOverride stores or replaces the policy override for a location.
	SaveOverride(ctx context.Context, locationID string, p policy.Policy) error
}

// AttendanceReader provides read access to per-day attendance records.
type AttendanceReader interface {
	// GetDay retrieves the day record for (employee, date), or nil if the
	// employee has not checked in that date.
	GetDay(ctx context.Context, employeeID string, date time.Time) (*attendance.Day, error)
}

// AttendanceWriter provides write access to per-day attendance records.
// Implementations must enforce uniqueness on (employee, date): CreateDay for
// an existing pair returns ErrDuplicateDay.
type AttendanceWriter interface {
	AttendanceReader

	// CreateDay inserts a new day record. Returns ErrDuplicateDay if a
	// record already exists for the (employee, date) key.
	CreateDay(ctx context.Context, day attendance.Day) error
	// UpdateDay replaces an existing day record.
	UpdateDay(ctx context.Context, day attendance.Day) error
}

// Employee is the directory projection the engine needs: where the employee
// works and when they are expected there. Shift times are clock times in the
// "15:04" format, interpreted in UTC on the attendance date.
type Employee struct {
	ID         string
	Name       string
	LocationID string
	ShiftStart string
	ShiftEnd   string
}

// ScheduleFor materializes the employee's shift window on a specific date.
// Missing or malformed shift times yield a zero window, which disables
// lateness classification rather than failing the attempt.
func (e Employee) ScheduleFor(date time.Time) attendance.Schedule {
	day := attendance.DateOf(date)
	var sched attendance.Schedule
	if t, err := time.Parse("15:04", e.ShiftStart); err == nil {
		sched.Start = day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	if t, err := time.Parse("15:04", e.ShiftEnd); err == nil {
		sched.End = day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	return sched
}
