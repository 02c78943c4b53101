package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/attendance-gate/internal/facematch"
)

// DescriptorRepository handles database operations for enrolled face
// descriptors.
type DescriptorRepository struct {
	pool *Pool
}

// NewDescriptorRepository creates a new descriptor repository.
func NewDescriptorRepository(pool *Pool) *DescriptorRepository {
	return &DescriptorRepository{pool: pool}
}

// GetByEmployee retrieves all descriptors for an employee, newest first.
func (r *DescriptorRepository) GetByEmployee(ctx context.Context, employeeID string) ([]facematch.Descriptor, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, employee_id, embedding, quality, enrolled_at
		FROM descriptors
		WHERE employee_id = $1
		ORDER BY enrolled_at DESC
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDescriptors(rows)
}

// All retrieves every stored descriptor.
func (r *DescriptorRepository) All(ctx context.Context) ([]facematch.Descriptor, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, employee_id, embedding, quality, enrolled_at
		FROM descriptors
		ORDER BY enrolled_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDescriptors(rows)
}

// Count returns the total number of descriptors stored.
func (r *DescriptorRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM descriptors").Scan(&count)
	return count, err
}

// Save stores a new descriptor for an employee.
func (r *DescriptorRepository) Save(ctx context.Context, d facematch.Descriptor) error {
	vec := pgvector.NewVector(d.Embedding)
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO descriptors (id, employee_id, embedding, quality, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)
	`, d.ID, d.EmployeeID, vec, d.Quality, d.EnrolledAt)
	return err
}

// DeleteByEmployee removes all descriptors for an employee.
func (r *DescriptorRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int, error) {
	res, err := r.pool.db.ExecContext(ctx, "DELETE FROM descriptors WHERE employee_id = $1", employeeID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type descriptorRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDescriptors(rows descriptorRows) ([]facematch.Descriptor, error) {
	var out []facematch.Descriptor
	for rows.Next() {
		var (
			d   facematch.Descriptor
			id  uuid.UUID
			vec pgvector.Vector
		)
		if err := rows.Scan(&id, &d.EmployeeID, &vec, &d.Quality, &d.EnrolledAt); err != nil {
			return nil, err
		}
		d.ID = id
		d.Embedding = vec.Slice()
		out = append(out, d)
	}
	return out, rows.Err()
}
