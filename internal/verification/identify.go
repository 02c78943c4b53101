package verification

import (
	"sort"

	"github.com/kozaktomas/attendance-gate/internal/facematch"
)

// IdentifyCandidate is one employee suggestion from a 1:N probe lookup.
type IdentifyCandidate struct {
	EmployeeID string
	Score      float64
	Distance   float64
}

// Identify suggests which employees a probe most likely belongs to, using
// the HNSW index over all enrollments. It is a kiosk convenience only: the
// result seeds the employee id field of a subsequent Verify call, it never
// accepts attendance by itself.
func Identify(index *facematch.Index, probe []float32, limit int, normalization float64) ([]IdentifyCandidate, error) {
	// Over-fetch so multiple descriptors of one employee collapse into a
	// single candidate without starving the result list.
	raw, err := index.Search(probe, limit*3)
	if err != nil {
		return nil, err
	}

	best := make(map[string]IdentifyCandidate)
	for _, c := range raw {
		if c.EmployeeID == "" {
			continue
		}
		prev, seen := best[c.EmployeeID]
		if !seen || c.Distance < prev.Distance {
			best[c.EmployeeID] = IdentifyCandidate{
				EmployeeID: c.EmployeeID,
				Score:      facematch.DistanceToScore(c.Distance, normalization),
				Distance:   c.Distance,
			}
		}
	}

	out := make([]IdentifyCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
