// Package facematch implements the 1:1 face verification core: distance math
// between descriptors, distance-to-score normalization, and best-match
// selection across an employee's enrolled descriptor set.
package facematch

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultDim is the fixed descriptor dimension used across the system.
// Every enrolled descriptor and every probe must have exactly this length.
const DefaultDim = 128

// ErrNoEnrollment is returned when an employee has no enrolled descriptors.
// It is distinct from a low score so the orchestrator can route the attempt
// to manual review instead of rejecting it.
var ErrNoEnrollment = errors.New("no enrolled descriptors for employee")

// Descriptor is one enrolled face descriptor owned by an employee.
type Descriptor struct {
	ID         uuid.UUID
	EmployeeID string
	Embedding  []float32
	Quality    float64
	EnrolledAt time.Time
}

// MatchResult is the outcome of matching a probe against an enrolled set.
type MatchResult struct {
	Passed       bool
	Score        float64
	Distance     float64
	DescriptorID uuid.UUID
}

// DistanceToScore converts a cosine distance into a similarity score in
// [0, 100]. The mapping is monotonic and fixed: score = 100 * (1 - d/norm).
// The same normalization constant must be used at enrollment time and at
// verification time, otherwise matches silently drift.
func DistanceToScore(distance, normalization float64) float64 {
	if normalization <= 0 {
		normalization = 1.0
	}
	score := 100 * (1 - distance/normalization)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Match finds the best (minimum-distance) match for probe across the enrolled
// set and compares the normalized score against threshold. Ties are broken by
// the most recently enrolled descriptor. Returns ErrNoEnrollment for an empty
// set and ErrDimensionMismatch if any descriptor length differs from probe.
func Match(probe []float32, enrolled []Descriptor, threshold, normalization float64) (MatchResult, error) {
	if len(enrolled) == 0 {
		return MatchResult{}, ErrNoEnrollment
	}

	var (
		best      *Descriptor
		bestDist  float64
		haveMatch bool
	)
	for i := range enrolled {
		d := &enrolled[i]
		dist, err := CosineDistance(probe, d.Embedding)
		if err != nil {
			return MatchResult{}, err
		}
		switch {
		case !haveMatch, dist < bestDist:
			best, bestDist, haveMatch = d, dist, true
		case dist == bestDist && d.EnrolledAt.After(best.EnrolledAt):
			best = d
		}
	}

	score := DistanceToScore(bestDist, normalization)
	return MatchResult{
		Passed:       score >= threshold,
		Score:        score,
		Distance:     bestDist,
		DescriptorID: best.ID,
	}, nil
}

// SelfScore computes the enrollment-quality score of a new descriptor against
// an existing enrolled set. It shares DistanceToScore with verification so
// the two paths can never use different mappings. A descriptor enrolled into
// an empty set scores 100 (nothing to compare against).
func SelfScore(embedding []float32, enrolled []Descriptor, normalization float64) (float64, error) {
	if len(enrolled) == 0 {
		return 100, nil
	}
	res, err := Match(embedding, enrolled, 0, normalization)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}
