package facematch

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

// HNSW graph parameters.
const indexMaxNeighbors = 16

// Candidate is one nearest-neighbor hit from the identification index.
type Candidate struct {
	DescriptorID string
	EmployeeID   string
	Distance     float64
}

// Index is an in-memory HNSW index over all enrolled descriptors, used for
// 1:N identification (kiosk mode, where the employee does not type an id).
// Verification itself never consults the index; it always matches against the
// claimed employee's descriptors directly.
type Index struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[string]
	byID  map[string]Descriptor
}

// NewIndex creates an empty identification index.
func NewIndex() *Index {
	return &Index{byID: make(map[string]Descriptor)}
}

// Build replaces the index contents with the given descriptors.
func (ix *Index) Build(descriptors []Descriptor) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(descriptors) == 0 {
		ix.graph = nil
		ix.byID = make(map[string]Descriptor)
		return
	}

	g := hnsw.NewGraph[string]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	ix.byID = make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if len(d.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(d.ID.String(), d.Embedding))
		ix.byID[d.ID.String()] = d
	}
	ix.graph = g
}

// Add inserts a single descriptor, used to keep the index in sync after an
// enrollment without a full rebuild.
func (ix *Index) Add(d Descriptor) {
	if len(d.Embedding) == 0 {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.graph == nil {
		g := hnsw.NewGraph[string]()
		g.M = indexMaxNeighbors
		g.Ml = 1.0 / float64(indexMaxNeighbors)
		g.Distance = hnsw.CosineDistance
		ix.graph = g
	}
	ix.graph.Add(hnsw.MakeNode(d.ID.String(), d.Embedding))
	ix.byID[d.ID.String()] = d
}

// Search returns the k nearest enrolled descriptors to the probe, with exact
// cosine distances recomputed from the node embeddings.
func (ix *Index) Search(probe []float32, k int) ([]Candidate, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		return nil, errors.New("index not initialized")
	}

	neighbors := ix.graph.Search(probe, k)
	candidates := make([]Candidate, 0, len(neighbors))
	for _, n := range neighbors {
		dist, err := CosineDistance(probe, n.Value)
		if err != nil {
			return nil, err
		}
		c := Candidate{DescriptorID: n.Key, Distance: dist}
		if d, ok := ix.byID[n.Key]; ok {
			c.EmployeeID = d.EmployeeID
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Len returns the number of indexed descriptors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}
