package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asagi0398/spinpick/internal/settings"
)

func TestHandleSettings_GetReturnsDefaults(t *testing.T) {
	setupWheelAPITestDB(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	handleSettings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got=%d want=%d", rec.Code, http.StatusOK)
	}

	var resp map[string]settings.Setting
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if got := resp["SPIN_DURATION_MS"].Value; got != "4000" {
		t.Fatalf("unexpected SPIN_DURATION_MS: got=%q want=%q", got, "4000")
	}
	if _, ok := resp["HISTORY_LIMIT"]; !ok {
		t.Fatalf("HISTORY_LIMIT should be present in defaults")
	}
}

func TestHandleSettings_PutUpdatesValues(t *testing.T) {
	setupWheelAPITestDB(t)

	body := `{"SPIN_DURATION_MS":"6000","MUTE_SOUND":"true"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handleSettings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp map[string]settings.Setting
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if got := resp["SPIN_DURATION_MS"].Value; got != "6000" {
		t.Fatalf("unexpected SPIN_DURATION_MS: got=%q want=%q", got, "6000")
	}
	if got := resp["MUTE_SOUND"].Value; got != "true" {
		t.Fatalf("unexpected MUTE_SOUND: got=%q want=%q", got, "true")
	}
}

func TestHandleSettings_PutRejectsInvalidValues(t *testing.T) {
	setupWheelAPITestDB(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `{"NO_SUCH_KEY":"1"}`},
		{"duration too short", `{"SPIN_DURATION_MS":"100"}`},
		{"not a bool", `{"MUTE_SOUND":"maybe"}`},
		{"empty payload", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handleSettings(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status mismatch: got=%d want=%d body=%s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}
