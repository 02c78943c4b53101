package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kozaktomas/attendance-gate/internal/database"
)

// EmployeeRepository holds the employee directory projection the engine
// needs. Full employee CRUD belongs to the surrounding HR application; the
// engine only reads it, plus an upsert for the admin CLI.
type EmployeeRepository struct {
	pool *Pool
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(pool *Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Get retrieves an employee by id.
func (r *EmployeeRepository) Get(ctx context.Context, id string) (*database.Employee, error) {
	var e database.Employee
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, location_id, shift_start, shift_end
		FROM employees
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.LocationID, &e.ShiftStart, &e.ShiftEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert stores or replaces an employee record.
func (r *EmployeeRepository) Upsert(ctx context.Context, e database.Employee) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, location_id, shift_start, shift_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			location_id = EXCLUDED.location_id,
			shift_start = EXCLUDED.shift_start,
			shift_end = EXCLUDED.shift_end
	`, e.ID, e.Name, e.LocationID, e.ShiftStart, e.ShiftEnd)
	return err
}
