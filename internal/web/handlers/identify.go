package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/verification"
)

// IdentifyHandler suggests employee candidates for a probe descriptor. It is
// a kiosk convenience: the client still verifies against the chosen employee
// afterwards.
type IdentifyHandler struct {
	index    *facematch.Index
	policies database.PolicyReader
	limit    int
}

// NewIdentifyHandler creates an identify handler.
func NewIdentifyHandler(index *facematch.Index, policies database.PolicyReader, limit int) *IdentifyHandler {
	return &IdentifyHandler{index: index, policies: policies, limit: limit}
}

// IdentifyRequest carries the probe descriptor captured at the kiosk.
type IdentifyRequest struct {
	Descriptor []float32 `json:"descriptor"`
}

// IdentifyCandidate is one suggested employee.
type IdentifyCandidate struct {
	EmployeeID string  `json:"employee_id"`
	Score      float64 `json:"score"`
}

// Identify handles POST /api/v1/attendance/identify.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req IdentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Descriptor) == 0 {
		respondError(w, http.StatusBadRequest, "descriptor is required")
		return
	}

	if h.index.Len() == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"candidates": []IdentifyCandidate{}})
		return
	}

	pol, err := h.policies.Effective(r.Context(), "")
	if err != nil {
		log.Printf("Loading policy for identify failed: %v", err)
		respondError(w, http.StatusInternalServerError, "identification failed")
		return
	}

	candidates, err := verification.Identify(h.index, req.Descriptor, h.limit, pol.DistanceNormalization)
	if err != nil {
		log.Printf("Identification failed: %v", err)
		respondError(w, http.StatusInternalServerError, "identification failed")
		return
	}

	out := make([]IdentifyCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, IdentifyCandidate{EmployeeID: c.EmployeeID, Score: c.Score})
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidates": out})
}
