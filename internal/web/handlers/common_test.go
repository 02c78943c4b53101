package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var resp map[string]string
	parseJSONResponse(t, recorder, &resp)
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestRespondError(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondError(recorder, http.StatusTeapot, "something broke")

	assertStatusCode(t, recorder, http.StatusTeapot)
	assertJSONError(t, recorder, "something broke")
}

func TestSanitizeForLog(t *testing.T) {
	got := sanitizeForLog("emp-1\ninjected\rline")
	if got != "emp-1injectedline" {
		t.Errorf("expected newlines stripped, got %q", got)
	}
}
