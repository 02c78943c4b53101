package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
)

// ErrQualityTooLow rejects an enrollment whose upstream source-quality score
// is below the location policy's minimum.
var ErrQualityTooLow = errors.New("descriptor quality below policy minimum")

// Enroller is the descriptor write path, deliberately separated from the
// verification read path. It shares the distance-to-score mapping with
// Verify through facematch.SelfScore so the two can never drift apart.
type Enroller struct {
	descriptors database.DescriptorWriter
	employees   database.EmployeeReader
	policies    database.PolicyReader
	index       *facematch.Index
	dim         int
}

// NewEnroller wires the enrollment path. index may be nil when the kiosk
// identify feature is disabled.
func NewEnroller(
	descriptors database.DescriptorWriter,
	employees database.EmployeeReader,
	policies database.PolicyReader,
	index *facematch.Index,
	dim int,
) *Enroller {
	return &Enroller{
		descriptors: descriptors,
		employees:   employees,
		policies:    policies,
		index:       index,
		dim:         dim,
	}
}

// Enroll stores a new descriptor for an employee and returns it along with
// its self-score against the existing enrolled set. By default descriptors
// accumulate and verification uses the best match; a location policy with
// exclusive_enrollment replaces all prior descriptors instead.
func (e *Enroller) Enroll(ctx context.Context, employeeID string, embedding []float32, quality float64) (facematch.Descriptor, float64, error) {
	if len(embedding) != e.dim {
		return facematch.Descriptor{}, 0, fmt.Errorf("%w: got %d dimensions, want %d",
			facematch.ErrDimensionMismatch, len(embedding), e.dim)
	}

	emp, err := e.employees.Get(ctx, employeeID)
	if err != nil {
		return facematch.Descriptor{}, 0, fmt.Errorf("loading employee %s: %w", employeeID, err)
	}

	pol, err := e.policies.Effective(ctx, emp.LocationID)
	if err != nil {
		return facematch.Descriptor{}, 0, fmt.Errorf("loading policy: %w", err)
	}
	if quality < pol.MinEnrollQuality {
		return facematch.Descriptor{}, 0, fmt.Errorf("%w: %.1f < %.1f", ErrQualityTooLow, quality, pol.MinEnrollQuality)
	}

	if pol.ExclusiveEnrollment {
		if _, err := e.descriptors.DeleteByEmployee(ctx, employeeID); err != nil {
			return facematch.Descriptor{}, 0, fmt.Errorf("removing prior descriptors: %w", err)
		}
	}

	// Sanity-check the new descriptor against what is already enrolled,
	// using the exact mapping verification will use later.
	existing, err := e.descriptors.GetByEmployee(ctx, employeeID)
	if err != nil {
		return facematch.Descriptor{}, 0, fmt.Errorf("loading descriptors: %w", err)
	}
	selfScore, err := facematch.SelfScore(embedding, existing, pol.DistanceNormalization)
	if err != nil {
		return facematch.Descriptor{}, 0, err
	}

	d := facematch.Descriptor{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Embedding:  embedding,
		Quality:    quality,
		EnrolledAt: time.Now().UTC(),
	}
	if err := e.descriptors.Save(ctx, d); err != nil {
		return facematch.Descriptor{}, 0, fmt.Errorf("saving descriptor: %w", err)
	}

	if e.index != nil {
		if pol.ExclusiveEnrollment {
			// The HNSW graph cannot drop the replaced nodes in place.
			all, err := e.descriptors.All(ctx)
			if err != nil {
				return facematch.Descriptor{}, 0, fmt.Errorf("rebuilding index: %w", err)
			}
			e.index.Build(all)
		} else {
			e.index.Add(d)
		}
	}

	return d, selfScore, nil
}

// SelfScore recomputes the enrollment-quality score of an embedding against
// an employee's current descriptors.
func (e *Enroller) SelfScore(ctx context.Context, employeeID string, embedding []float32) (float64, error) {
	emp, err := e.employees.Get(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	pol, err := e.policies.Effective(ctx, emp.LocationID)
	if err != nil {
		return 0, err
	}
	existing, err := e.descriptors.GetByEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	return facematch.SelfScore(embedding, existing, pol.DistanceNormalization)
}

// List returns descriptor metadata for an employee. Embeddings are stripped;
// raw biometric vectors never leave the engine.
func (e *Enroller) List(ctx context.Context, employeeID string) ([]facematch.Descriptor, error) {
	descriptors, err := e.descriptors.GetByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	for i := range descriptors {
		descriptors[i].Embedding = nil
	}
	return descriptors, nil
}
