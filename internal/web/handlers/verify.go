package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/attendance-gate/internal/attendance"
	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/verification"
)

// VerifyHandler handles check-in and check-out verification requests.
type VerifyHandler struct {
	verifier *verification.Service
}

// NewVerifyHandler creates a verify handler.
func NewVerifyHandler(verifier *verification.Service) *VerifyHandler {
	return &VerifyHandler{verifier: verifier}
}

// VerifyRequest is one verification attempt from a client device.
type VerifyRequest struct {
	EmployeeID string    `json:"employee_id"`
	Action     string    `json:"action"`
	Descriptor []float32 `json:"descriptor"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	WifiSSID   string    `json:"wifi_ssid,omitempty"`
	Timestamp  string    `json:"timestamp,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"`
}

// VerifyResponse mirrors the engine's decision.
type VerifyResponse struct {
	Outcome        string   `json:"outcome"`
	Confidence     float64  `json:"confidence"`
	FaceScore      float64  `json:"face_score"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	LocationReason string   `json:"location_reason,omitempty"`
	DayState       string   `json:"day_state,omitempty"`
	Late           bool     `json:"late"`
}

// Verify handles POST /api/v1/attendance/verify.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	attempt := verification.Attempt{
		EmployeeID: req.EmployeeID,
		Action:     attendance.Action(req.Action),
		Probe:      req.Descriptor,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		WifiSSID:   req.WifiSSID,
		DeviceID:   req.DeviceID,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid timestamp, expected RFC3339")
			return
		}
		attempt.Timestamp = ts
	}

	decision, err := h.verifier.Verify(r.Context(), attempt)
	switch {
	case errors.Is(err, verification.ErrInvalidAttempt):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, facematch.ErrDimensionMismatch):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "employee not found")
		return
	case errors.Is(err, verification.ErrBusy):
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusConflict, "attendance record busy, retry")
		return
	case err != nil:
		log.Printf("Verification failed for employee %s: %v", sanitizeForLog(req.EmployeeID), err)
		respondError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponse{
		Outcome:        string(decision.Outcome),
		Confidence:     decision.Confidence,
		FaceScore:      decision.FaceScore,
		DistanceMeters: decision.DistanceMeters,
		LocationReason: string(decision.LocationReason),
		DayState:       string(decision.DayState),
		Late:           decision.Late,
	})
}
