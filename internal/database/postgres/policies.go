package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kozaktomas/attendance-gate/internal/policy"
)

// PolicyRepository resolves per-location policy overrides, falling back to
// the embedded global default.
type PolicyRepository struct {
	pool *Pool
}

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(pool *Pool) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

// Effective returns the location's policy override if one exists, otherwise
// the global default.
func (r *PolicyRepository) Effective(ctx context.Context, locationID string) (policy.Policy, error) {
	var p policy.Policy
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT face_threshold, distance_normalization, required_signals,
		       grace_minutes, min_enroll_quality, exclusive_enrollment
		FROM location_policies
		WHERE location_id = $1
	`, locationID).Scan(
		&p.FaceThreshold, &p.DistanceNormalization, &p.RequiredSignals,
		&p.GraceMinutes, &p.MinEnrollQuality, &p.ExclusiveEnrollment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return policy.Default(), nil
	}
	if err != nil {
		return policy.Policy{}, err
	}
	return p, nil
}

// SaveOverride stores or replaces the policy override for a location.
func (r *PolicyRepository) SaveOverride(ctx context.Context, locationID string, p policy.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO location_policies (
			location_id, face_threshold, distance_normalization,
			required_signals, grace_minutes, min_enroll_quality, exclusive_enrollment
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (location_id) DO UPDATE SET
			face_threshold = EXCLUDED.face_threshold,
			distance_normalization = EXCLUDED.distance_normalization,
			required_signals = EXCLUDED.required_signals,
			grace_minutes = EXCLUDED.grace_minutes,
			min_enroll_quality = EXCLUDED.min_enroll_quality,
			exclusive_enrollment = EXCLUDED.exclusive_enrollment
	`, locationID, p.FaceThreshold, p.DistanceNormalization,
		string(p.RequiredSignals), p.GraceMinutes, p.MinEnrollQuality, p.ExclusiveEnrollment)
	return err
}
