package verification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/attendance-gate/internal/facematch"
)

func identifyIndex() *facematch.Index {
	now := time.Now()
	index := facematch.NewIndex()
	index.Build([]facematch.Descriptor{
		{ID: uuid.New(), EmployeeID: "emp-1", Embedding: []float32{1, 0}, EnrolledAt: now},
		{ID: uuid.New(), EmployeeID: "emp-1", Embedding: []float32{0.99, 0.14}, EnrolledAt: now},
		{ID: uuid.New(), EmployeeID: "emp-2", Embedding: []float32{0, 1}, EnrolledAt: now},
		{ID: uuid.New(), EmployeeID: "emp-3", Embedding: []float32{-1, 0}, EnrolledAt: now},
	})
	return index
}

func TestIdentify_RanksByDistance(t *testing.T) {
	candidates, err := Identify(identifyIndex(), []float32{1, 0.05}, 3, 1.0)
	require.NoError(t, err)

	require.NotEmpty(t, candidates)
	assert.Equal(t, "emp-1", candidates[0].EmployeeID)
	assert.Greater(t, candidates[0].Score, 95.0)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i].Distance, candidates[i-1].Distance)
	}
}

func TestIdentify_CollapsesDescriptorsPerEmployee(t *testing.T) {
	candidates, err := Identify(identifyIndex(), []float32{1, 0.05}, 10, 1.0)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, c := range candidates {
		seen[c.EmployeeID]++
	}
	assert.Equal(t, 1, seen["emp-1"], "both emp-1 descriptors must collapse into one candidate")
}

func TestIdentify_RespectsLimit(t *testing.T) {
	candidates, err := Identify(identifyIndex(), []float32{1, 0}, 2, 1.0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(candidates), 2)
}

func TestIdentify_EmptyIndex(t *testing.T) {
	_, err := Identify(facematch.NewIndex(), []float32{1, 0}, 3, 1.0)
	assert.Error(t, err)
}
