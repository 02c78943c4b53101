package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance-gate/internal/verification"
)

// AttendanceHandler serves the committed attendance state for a day.
type AttendanceHandler struct {
	verifier *verification.Service
}

// NewAttendanceHandler creates an attendance handler.
func NewAttendanceHandler(verifier *verification.Service) *AttendanceHandler {
	return &AttendanceHandler{verifier: verifier}
}

// DayResponse is one employee's attendance record for a calendar date.
type DayResponse struct {
	EmployeeID string     `json:"employee_id"`
	Date       string     `json:"date"`
	State      string     `json:"state"`
	CheckInAt  *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
	Late       bool       `json:"late"`
	EarlyLeave bool       `json:"early_leave"`
}

// Get handles GET /api/v1/attendance/{employeeID}?date=2006-01-02.
// Without a date parameter it returns today's record.
func (h *AttendanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	date := time.Now().UTC()
	if param := r.URL.Query().Get("date"); param != "" {
		parsed, err := time.Parse("2006-01-02", param)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	day, err := h.verifier.DayState(r.Context(), employeeID, date)
	if err != nil {
		log.Printf("Loading attendance for employee %s failed: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "loading attendance failed")
		return
	}

	respondJSON(w, http.StatusOK, DayResponse{
		EmployeeID: day.EmployeeID,
		Date:       day.Date.Format("2006-01-02"),
		State:      string(day.State),
		CheckInAt:  day.CheckInAt,
		CheckOutAt: day.CheckOutAt,
		Late:       day.Late,
		EarlyLeave: day.EarlyLeave,
	})
}
