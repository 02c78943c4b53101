package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/kozaktomas/attendance-gate/internal/attendance"
	"github.com/kozaktomas/attendance-gate/internal/database"
)

// pqUniqueViolation is the PostgreSQL error code for unique_violation.
const pqUniqueViolation = "23505"

// AttendanceRepository handles the attendance_days table. The table's
// (employee_id, day) primary key is the storage-level backstop for the
// one-record-per-employee-per-day invariant.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// GetDay retrieves the day record for (employee, date), or nil if none
// exists yet.
func (r *AttendanceRepository) GetDay(ctx context.Context, employeeID string, date time.Time) (*attendance.Day, error) {
	var (
		day               attendance.Day
		checkIn, checkOut sql.NullTime
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT employee_id, day, state,
		       check_in_at, check_in_method, check_in_confidence,
		       check_out_at, check_out_method, check_out_confidence,
		       late, early_leave
		FROM attendance_days
		WHERE employee_id = $1 AND day = $2
	`, employeeID, attendance.DateOf(date)).Scan(
		&day.EmployeeID, &day.Date, &day.State,
		&checkIn, &day.CheckInMethod, &day.CheckInConfidence,
		&checkOut, &day.CheckOutMethod, &day.CheckOutConfidence,
		&day.Late, &day.EarlyLeave,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if checkIn.Valid {
		day.CheckInAt = &checkIn.Time
	}
	if checkOut.Valid {
		day.CheckOutAt = &checkOut.Time
	}
	day.Date = attendance.DateOf(day.Date)
	return &day, nil
}

// CreateDay inserts a new day record. A concurrent insert for the same
// (employee, date) surfaces as database.ErrDuplicateDay.
func (r *AttendanceRepository) CreateDay(ctx context.Context, day attendance.Day) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendance_days (
			employee_id, day, state,
			check_in_at, check_in_method, check_in_confidence,
			check_out_at, check_out_method, check_out_confidence,
			late, early_leave
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, day.EmployeeID, day.Date, day.State,
		nullTime(day.CheckInAt), day.CheckInMethod, day.CheckInConfidence,
		nullTime(day.CheckOutAt), day.CheckOutMethod, day.CheckOutConfidence,
		day.Late, day.EarlyLeave)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return database.ErrDuplicateDay
	}
	return err
}

// UpdateDay replaces an existing day record.
func (r *AttendanceRepository) UpdateDay(ctx context.Context, day attendance.Day) error {
	res, err := r.pool.db.ExecContext(ctx, `
		UPDATE attendance_days SET
			state = $3,
			check_in_at = $4, check_in_method = $5, check_in_confidence = $6,
			check_out_at = $7, check_out_method = $8, check_out_confidence = $9,
			late = $10, early_leave = $11
		WHERE employee_id = $1 AND day = $2
	`, day.EmployeeID, day.Date, day.State,
		nullTime(day.CheckInAt), day.CheckInMethod, day.CheckInConfidence,
		nullTime(day.CheckOutAt), day.CheckOutMethod, day.CheckOutConfidence,
		day.Late, day.EarlyLeave)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
