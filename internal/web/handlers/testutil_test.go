package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/database/mock"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/geofence"
	"github.com/kozaktomas/attendance-gate/internal/verification"
)

// The test engine uses 2-dimensional descriptors so scores are easy to pick:
// a probe with cosine 0.92 against the enrolled vector scores 92.
var (
	testEnrolledVec = []float32{1, 0}
	testProbeMatch  = []float32{0.92, 0.39192}
	testProbeNoise  = []float32{0.6, 0.8}
)

// testEngine bundles the engine components backed by in-memory stores.
type testEngine struct {
	verifier    *verification.Service
	enroller    *verification.Enroller
	index       *facematch.Index
	descriptors *mock.DescriptorStore
	policies    *mock.PolicyStore
	days        *mock.AttendanceStore
}

func floatPtr(v float64) *float64 { return &v }

// newTestEngine creates an engine with employee emp-1 registered at a
// geofenced location, without any enrolled descriptors.
func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	descriptors := mock.NewDescriptorStore()
	employees := mock.NewEmployeeStore()
	fences := mock.NewGeofenceStore()
	policies := mock.NewPolicyStore()
	days := mock.NewAttendanceStore()

	employees.Add(database.Employee{
		ID:         "emp-1",
		Name:       "Jana Dvorakova",
		LocationID: "hq",
		ShiftStart: "09:00",
		ShiftEnd:   "17:00",
	})
	if err := fences.Save(context.Background(), geofence.Geofence{
		LocationID:   "hq",
		Latitude:     floatPtr(50.0755),
		Longitude:    floatPtr(14.4378),
		RadiusMeters: 50,
		WifiSSID:     "office-net",
	}); err != nil {
		t.Fatalf("failed to seed geofence: %v", err)
	}

	index := facematch.NewIndex()
	return &testEngine{
		verifier:    verification.NewService(descriptors, employees, fences, policies, days, 500*time.Millisecond, nil),
		enroller:    verification.NewEnroller(descriptors, employees, policies, index, 2),
		index:       index,
		descriptors: descriptors,
		policies:    policies,
		days:        days,
	}
}

// enroll seeds a descriptor for emp-1 in both the store and the index.
func (e *testEngine) enroll(t *testing.T, embedding []float32) {
	t.Helper()
	d := facematch.Descriptor{
		ID:         uuid.New(),
		EmployeeID: "emp-1",
		Embedding:  embedding,
		Quality:    90,
		EnrolledAt: time.Now().UTC(),
	}
	e.descriptors.Add(d)
	e.index.Add(d)
}

// jsonRequest creates a request with a JSON-encoded body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
