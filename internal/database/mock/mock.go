// Package mock provides in-memory implementations of the database interfaces
// for testing, with error injection fields to simulate backend failures.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/attendance-gate/internal/attendance"
	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/geofence"
	"github.com/kozaktomas/attendance-gate/internal/policy"
)

// DescriptorStore is a mock database.DescriptorWriter.
type DescriptorStore struct {
	mu          sync.RWMutex
	descriptors []facematch.Descriptor

	// Error injection
	GetError    error
	SaveError   error
	DeleteError error
}

// NewDescriptorStore creates an empty mock descriptor store.
func NewDescriptorStore() *DescriptorStore {
	return &DescriptorStore{}
}

// Add seeds a descriptor without going through Save.
func (s *DescriptorStore) Add(d facematch.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptors = append(s.descriptors, d)
}

// GetByEmployee returns the employee's descriptors, newest first.
func (s *DescriptorStore) GetByEmployee(ctx context.Context, employeeID string) ([]facematch.Descriptor, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []facematch.Descriptor
	for _, d := range s.descriptors {
		if d.EmployeeID == employeeID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

// All returns every stored descriptor.
func (s *DescriptorStore) All(ctx context.Context) ([]facematch.Descriptor, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]facematch.Descriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out, nil
}

// Count returns the number of stored descriptors.
func (s *DescriptorStore) Count(ctx context.Context) (int, error) {
	if s.GetError != nil {
		return 0, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.descriptors), nil
}

// Save stores a descriptor.
func (s *DescriptorStore) Save(ctx context.Context, d facematch.Descriptor) error {
	if s.SaveError != nil {
		return s.SaveError
	}
	s.Add(d)
	return nil
}

// DeleteByEmployee removes all descriptors for an employee.
func (s *DescriptorStore) DeleteByEmployee(ctx context.Context, employeeID string) (int, error) {
	if s.DeleteError != nil {
		return 0, s.DeleteError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.descriptors[:0]
	removed := 0
	for _, d := range s.descriptors {
		if d.EmployeeID == employeeID {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	s.descriptors = kept
	return removed, nil
}

// EmployeeStore is a mock database.EmployeeReader.
type EmployeeStore struct {
	mu        sync.RWMutex
	employees map[string]database.Employee

	GetError error
}

// NewEmployeeStore creates an empty mock employee store.
func NewEmployeeStore() *EmployeeStore {
	return &EmployeeStore{employees: make(map[string]database.Employee)}
}

// Add seeds an employee.
func (s *EmployeeStore) Add(e database.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

// Get retrieves an employee or database.ErrNotFound.
func (s *EmployeeStore) Get(ctx context.Context, id string) (*database.Employee, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &e, nil
}

// GeofenceStore is a mock database.GeofenceWriter.
type GeofenceStore struct {
	mu     sync.RWMutex
	fences map[string]geofence.Geofence

	GetError  error
	SaveError error
}

// NewGeofenceStore creates an empty mock geofence store.
func NewGeofenceStore() *GeofenceStore {
	return &GeofenceStore{fences: make(map[string]geofence.Geofence)}
}

// Get retrieves a geofence or database.ErrNotFound.
func (s *GeofenceStore) Get(ctx context.Context, locationID string) (*geofence.Geofence, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fences[locationID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &f, nil
}

// Save stores or replaces a geofence.
func (s *GeofenceStore) Save(ctx context.Context, fence geofence.Geofence) error {
	if s.SaveError != nil {
		return s.SaveError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fences[fence.LocationID] = fence
	return nil
}

// PolicyStore is a mock database.PolicyWriter backed by the global default.
type PolicyStore struct {
	mu        sync.RWMutex
	overrides map[string]policy.Policy

	GetError  error
	SaveError error
}

// NewPolicyStore creates a mock policy store with no overrides.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{overrides: make(map[string]policy.Policy)}
}

// Effective returns the override for the location or the global default.
func (s *PolicyStore) Effective(ctx context.Context, locationID string) (policy.Policy, error) {
	if s.GetError != nil {
		return policy.Policy{}, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.overrides[locationID]; ok {
		return p, nil
	}
	return policy.Default(), nil
}

// SaveOverride stores a per-location policy override.
func (s *PolicyStore) SaveOverride(ctx context.Context, locationID string, p policy.Policy) error {
	if s.SaveError != nil {
		return s.SaveError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[locationID] = p
	return nil
}

// AttendanceStore is a mock database.AttendanceWriter enforcing the
// (employee, date) unique key the way the Postgres backend does.
type AttendanceStore struct {
	mu   sync.RWMutex
	days map[string]attendance.Day

	GetError    error
	CreateError error
	UpdateError error
}

// NewAttendanceStore creates an empty mock attendance store.
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{days: make(map[string]attendance.Day)}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + attendance.DateOf(date).Format("2006-01-02")
}

// GetDay retrieves the day record, or nil if none exists.
func (s *AttendanceStore) GetDay(ctx context.Context, employeeID string, date time.Time) (*attendance.Day, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.days[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// CreateDay inserts a day record, or database.ErrDuplicateDay.
func (s *AttendanceStore) CreateDay(ctx context.Context, day attendance.Day) error {
	if s.CreateError != nil {
		return s.CreateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(day.EmployeeID, day.Date)
	if _, exists := s.days[key]; exists {
		return database.ErrDuplicateDay
	}
	s.days[key] = day
	return nil
}

// UpdateDay replaces an existing day record.
func (s *AttendanceStore) UpdateDay(ctx context.Context, day attendance.Day) error {
	if s.UpdateError != nil {
		return s.UpdateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(day.EmployeeID, day.Date)
	if _, exists := s.days[key]; !exists {
		return database.ErrNotFound
	}
	s.days[key] = day
	return nil
}

// Len returns the number of stored day records, used by idempotency tests.
func (s *AttendanceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.days)
}
