package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/types"
)

func setupWheelAPITestDB(t *testing.T) {
	t.Helper()

	if localdb.DBClient != nil {
		_ = localdb.DBClient.Close()
		localdb.DBClient = nil
	}

	dbPath := filepath.Join(t.TempDir(), "local.db")
	db, err := localdb.SetupDB(dbPath)
	if err != nil {
		t.Fatalf("SetupDB failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		localdb.DBClient = nil
	})
}

func saveTestWheel(t *testing.T, id string, options []types.WheelOption) {
	t.Helper()

	err := localdb.SaveWheel(types.Wheel{
		ID:        id,
		Name:      "test wheel",
		Options:   options,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("SaveWheel failed: %v", err)
	}
}

func TestHandleWheels_CreateAndList(t *testing.T) {
	setupWheelAPITestDB(t)

	body := `{"name":"Lunch","options":[{"label":"Ramen"},{"label":"Curry","weight":80}]}`
	postReq := httptest.NewRequest(http.MethodPost, "/api/wheels", strings.NewReader(body))
	postRec := httptest.NewRecorder()
	handleWheels(postRec, postReq)

	if postRec.Code != http.StatusCreated {
		t.Fatalf("POST status mismatch: got=%d want=%d body=%s", postRec.Code, http.StatusCreated, postRec.Body.String())
	}

	var created types.Wheel
	if err := json.NewDecoder(postRec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created wheel failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created wheel should have an ID")
	}
	if len(created.Options) != 2 {
		t.Fatalf("unexpected option count: got=%d want=%d", len(created.Options), 2)
	}
	if created.Options[0].Weight != types.DefaultOptionWeight {
		t.Fatalf("missing weight should default: got=%d want=%d", created.Options[0].Weight, types.DefaultOptionWeight)
	}
	if created.Options[1].Weight != 80 {
		t.Fatalf("explicit weight should be kept: got=%d want=%d", created.Options[1].Weight, 80)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/wheels", nil)
	getRec := httptest.NewRecorder()
	handleWheels(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("GET status mismatch: got=%d want=%d", getRec.Code, http.StatusOK)
	}

	var listResp struct {
		Wheels []types.Wheel `json:"wheels"`
	}
	if err := json.NewDecoder(getRec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list response failed: %v", err)
	}
	if len(listResp.Wheels) != 1 {
		t.Fatalf("unexpected wheel count: got=%d want=%d", len(listResp.Wheels), 1)
	}
}

func TestHandleWheels_RejectsInvalidPayloads(t *testing.T) {
	setupWheelAPITestDB(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"name":"","options":[{"label":"a"},{"label":"b"}]}`},
		{"single option", `{"name":"x","options":[{"label":"a"}]}`},
		{"weight too large", `{"name":"x","options":[{"label":"a","weight":101},{"label":"b"}]}`},
		{"weight too small", `{"name":"x","options":[{"label":"a","weight":0},{"label":"b"}]}`},
		{"duplicate option ids", `{"name":"x","options":[{"id":"opt-1","label":"a"},{"id":"opt-1","label":"b"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/wheels", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handleWheels(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status mismatch: got=%d want=%d body=%s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestHandleWheelItem_UpdateAndDelete(t *testing.T) {
	setupWheelAPITestDB(t)

	saveTestWheel(t, "wheel-1", []types.WheelOption{
		{ID: "opt-a", Label: "A", Weight: 50, Enabled: true},
		{ID: "opt-b", Label: "B", Weight: 50, Enabled: true},
	})

	putBody := `{"name":"Renamed","options":[{"id":"opt-a","label":"A","weight":30},{"id":"opt-b","label":"B","weight":70,"enabled":false}]}`
	putReq := httptest.NewRequest(http.MethodPut, "/api/wheels/wheel-1", strings.NewReader(putBody))
	putRec := httptest.NewRecorder()
	handleWheelSubroutes(putRec, putReq)

	if putRec.Code != http.StatusOK {
		t.Fatalf("PUT status mismatch: got=%d want=%d body=%s", putRec.Code, http.StatusOK, putRec.Body.String())
	}

	updated, err := localdb.GetWheel("wheel-1")
	if err != nil {
		t.Fatalf("GetWheel failed: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("unexpected name: got=%q want=%q", updated.Name, "Renamed")
	}
	if updated.Options[1].Enabled {
		t.Fatalf("opt-b should be disabled after update")
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/wheels/wheel-1", nil)
	delRec := httptest.NewRecorder()
	handleWheelSubroutes(delRec, delReq)

	if delRec.Code != http.StatusOK {
		t.Fatalf("DELETE status mismatch: got=%d want=%d", delRec.Code, http.StatusOK)
	}

	gone, err := localdb.GetWheel("wheel-1")
	if err != nil {
		t.Fatalf("GetWheel after delete failed: %v", err)
	}
	if gone != nil {
		t.Fatalf("wheel should be gone after delete")
	}

	delAgain := httptest.NewRecorder()
	handleWheelSubroutes(delAgain, httptest.NewRequest(http.MethodDelete, "/api/wheels/wheel-1", nil))
	if delAgain.Code != http.StatusNotFound {
		t.Fatalf("second DELETE status mismatch: got=%d want=%d", delAgain.Code, http.StatusNotFound)
	}
}

func TestHandleWheelSpin(t *testing.T) {
	setupWheelAPITestDB(t)

	saveTestWheel(t, "wheel-1", []types.WheelOption{
		{ID: "opt-a", Label: "A", Weight: 50, Enabled: true},
		{ID: "opt-b", Label: "B", Weight: 50, Enabled: true},
		{ID: "opt-c", Label: "C", Weight: 50, Enabled: true},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/wheels/wheel-1/spin", nil)
	rec := httptest.NewRecorder()
	handleWheelSubroutes(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Winner      types.WheelOption `json:"winner"`
		WinnerIndex int               `json:"winner_index"`
		Angle       float64           `json:"angle"`
		DurationMS  int               `json:"duration_ms"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if resp.Winner.ID == "" {
		t.Fatalf("winner should be set: response body=%s", rec.Body.String())
	}
	if resp.WinnerIndex < 0 || resp.WinnerIndex > 2 {
		t.Fatalf("winner_index out of range: got=%d", resp.WinnerIndex)
	}
	if resp.Angle < 0 {
		t.Fatalf("angle should be non-negative: got=%f", resp.Angle)
	}
	if resp.DurationMS <= 0 {
		t.Fatalf("duration_ms should be positive: got=%d", resp.DurationMS)
	}

	history, err := localdb.GetSpinHistory("wheel-1", 0)
	if err != nil {
		t.Fatalf("GetSpinHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("spin should save history: got=%d want=%d", len(history), 1)
	}
	if history[0].OptionID != resp.Winner.ID {
		t.Fatalf("history winner mismatch: got=%q want=%q", history[0].OptionID, resp.Winner.ID)
	}
}

func TestHandleWheelSpin_NotFound(t *testing.T) {
	setupWheelAPITestDB(t)

	req := httptest.NewRequest(http.MethodPost, "/api/wheels/missing/spin", nil)
	rec := httptest.NewRecorder()
	handleWheelSubroutes(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status mismatch: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleWheelSpin_NotEnoughEnabledOptions(t *testing.T) {
	setupWheelAPITestDB(t)

	saveTestWheel(t, "wheel-1", []types.WheelOption{
		{ID: "opt-a", Label: "A", Weight: 50, Enabled: true},
		{ID: "opt-b", Label: "B", Weight: 50, Enabled: false},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/wheels/wheel-1/spin", nil)
	rec := httptest.NewRecorder()
	handleWheelSubroutes(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestHandleWheelSpin_DisabledOptionNeverWins(t *testing.T) {
	setupWheelAPITestDB(t)

	saveTestWheel(t, "wheel-1", []types.WheelOption{
		{ID: "opt-a", Label: "A", Weight: 50, Enabled: true},
		{ID: "opt-b", Label: "B", Weight: 50, Enabled: true},
		{ID: "opt-c", Label: "C", Weight: 100, Enabled: false},
	})

	for i := 0; i < 50; i++ {
		result, err := executeSpin("wheel-1", 0)
		if err != nil {
			t.Fatalf("executeSpin failed on trial %d: %v", i, err)
		}
		if result.winner.ID == "opt-c" {
			t.Fatalf("disabled option won on trial %d", i)
		}
	}
}

func TestHandleWheelHistory_LimitAndDelete(t *testing.T) {
	setupWheelAPITestDB(t)

	saveTestWheel(t, "wheel-1", []types.WheelOption{
		{ID: "opt-a", Label: "A", Weight: 50, Enabled: true},
		{ID: "opt-b", Label: "B", Weight: 50, Enabled: true},
	})

	base := time.Now()
	for i := 0; i < 3; i++ {
		err := localdb.SaveSpinRecord(types.SpinRecord{
			ID:       "spin-" + string(rune('a'+i)),
			WheelID:  "wheel-1",
			OptionID: "opt-a",
			Label:    "A",
			Angle:    10,
			SpunAt:   base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("SaveSpinRecord failed: %v", err)
		}
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/wheels/wheel-1/history?limit=2", nil)
	getRec := httptest.NewRecorder()
	handleWheelSubroutes(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("GET status mismatch: got=%d want=%d", getRec.Code, http.StatusOK)
	}

	var historyResp struct {
		History []types.SpinRecord `json:"history"`
	}
	if err := json.NewDecoder(getRec.Body).Decode(&historyResp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if len(historyResp.History) != 2 {
		t.Fatalf("unexpected history length: got=%d want=%d", len(historyResp.History), 2)
	}
	if historyResp.History[0].ID != "spin-c" {
		t.Fatalf("newest record should come first: got=%q want=%q", historyResp.History[0].ID, "spin-c")
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/history/spin-a", nil)
	delRec := httptest.NewRecorder()
	handleHistoryItem(delRec, delReq)

	if delRec.Code != http.StatusOK {
		t.Fatalf("DELETE status mismatch: got=%d want=%d body=%s", delRec.Code, http.StatusOK, delRec.Body.String())
	}

	afterDelete, err := localdb.GetSpinHistory("wheel-1", 0)
	if err != nil {
		t.Fatalf("GetSpinHistory after delete failed: %v", err)
	}
	if len(afterDelete) != 2 {
		t.Fatalf("unexpected history length after delete: got=%d want=%d", len(afterDelete), 2)
	}
}
