package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/verification"
)

// DescriptorsHandler handles enrollment and descriptor listing.
type DescriptorsHandler struct {
	enroller *verification.Enroller
}

// NewDescriptorsHandler creates a descriptors handler.
func NewDescriptorsHandler(enroller *verification.Enroller) *DescriptorsHandler {
	return &DescriptorsHandler{enroller: enroller}
}

// EnrollRequest carries a new descriptor for an employee.
type EnrollRequest struct {
	Descriptor []float32 `json:"descriptor"`
	Quality    float64   `json:"quality"`
}

// EnrollResponse confirms a stored enrollment. SelfScore tells the operator
// how well the new descriptor agrees with what was already enrolled.
type EnrollResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Quality    float64   `json:"quality"`
	EnrolledAt time.Time `json:"enrolled_at"`
	SelfScore  float64   `json:"self_score"`
}

// DescriptorMeta is descriptor metadata without the embedding itself.
type DescriptorMeta struct {
	ID         string    `json:"id"`
	Quality    float64   `json:"quality"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// Enroll handles POST /api/v1/employees/{employeeID}/descriptors.
func (h *DescriptorsHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	d, selfScore, err := h.enroller.Enroll(r.Context(), employeeID, req.Descriptor, req.Quality)
	switch {
	case errors.Is(err, facematch.ErrDimensionMismatch):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, verification.ErrQualityTooLow):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "employee not found")
		return
	case err != nil:
		log.Printf("Enrollment failed for employee %s: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "enrollment failed")
		return
	}

	respondJSON(w, http.StatusCreated, EnrollResponse{
		ID:         d.ID.String(),
		EmployeeID: d.EmployeeID,
		Quality:    d.Quality,
		EnrolledAt: d.EnrolledAt,
		SelfScore:  selfScore,
	})
}

// List handles GET /api/v1/employees/{employeeID}/descriptors.
func (h *DescriptorsHandler) List(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	descriptors, err := h.enroller.List(r.Context(), employeeID)
	if err != nil {
		log.Printf("Listing descriptors for employee %s failed: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "listing descriptors failed")
		return
	}

	out := make([]DescriptorMeta, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, DescriptorMeta{
			ID:         d.ID.String(),
			Quality:    d.Quality,
			EnrolledAt: d.EnrolledAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"descriptors": out})
}
