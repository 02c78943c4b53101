package facematch

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(emb []float32, enrolledAt time.Time) Descriptor {
	return Descriptor{
		ID:         uuid.New(),
		EmployeeID: "emp-1",
		Embedding:  emb,
		Quality:    90,
		EnrolledAt: enrolledAt,
	}
}

func TestMatch_EmptySet(t *testing.T) {
	_, err := Match([]float32{1, 0}, nil, 80, 1.0)
	require.ErrorIs(t, err, ErrNoEnrollment)
}

func TestMatch_BestOfSeveral(t *testing.T) {
	now := time.Now()
	probe := []float32{1, 0, 0}
	far := descriptor([]float32{0, 1, 0}, now.Add(-48*time.Hour))
	near := descriptor([]float32{0.9, 0.1, 0}, now.Add(-24*time.Hour))

	res, err := Match(probe, []Descriptor{far, near}, 80, 1.0)
	require.NoError(t, err)

	assert.Equal(t, near.ID, res.DescriptorID)
	assert.True(t, res.Passed)
	assert.Greater(t, res.Score, 80.0)
}

func TestMatch_TieBrokenByMostRecent(t *testing.T) {
	now := time.Now()
	probe := []float32{1, 0}
	older := descriptor([]float32{1, 0}, now.Add(-72*time.Hour))
	newer := descriptor([]float32{1, 0}, now.Add(-1*time.Hour))

	res, err := Match(probe, []Descriptor{older, newer}, 80, 1.0)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, res.DescriptorID)
}

func TestMatch_BelowThreshold(t *testing.T) {
	probe := []float32{1, 0}
	enrolled := descriptor([]float32{0, 1}, time.Now())

	res, err := Match(probe, []Descriptor{enrolled}, 80, 1.0)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.0, res.Score)
}

func TestMatch_DimensionMismatch(t *testing.T) {
	probe := []float32{1, 0, 0}
	enrolled := descriptor([]float32{1, 0}, time.Now())

	_, err := Match(probe, []Descriptor{enrolled}, 80, 1.0)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDistanceToScore_Monotonic(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 100},
		{0.25, 75},
		{0.5, 50},
		{1.0, 0},
		{1.5, 0},  // clamped
		{-0.1, 100}, // clamped
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, DistanceToScore(tc.distance, 1.0), 1e-9,
			"distance %f", tc.distance)
	}
}

func TestDistanceToScore_NormalizationScales(t *testing.T) {
	// Same distance, wider normalization constant, higher score.
	assert.Greater(t, DistanceToScore(0.4, 2.0), DistanceToScore(0.4, 1.0))
}

func TestSelfScore_EmptySetIsPerfect(t *testing.T) {
	score, err := SelfScore([]float32{1, 0}, nil, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}

func TestSelfScore_MatchesVerificationMapping(t *testing.T) {
	enrolled := []Descriptor{descriptor([]float32{1, 0}, time.Now())}
	probe := []float32{0.8, 0.2}

	self, err := SelfScore(probe, enrolled, 1.0)
	require.NoError(t, err)

	res, err := Match(probe, enrolled, 0, 1.0)
	require.NoError(t, err)

	// Enrollment-time and verification-time scoring must agree exactly.
	assert.Equal(t, res.Score, self)
}
