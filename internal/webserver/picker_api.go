package webserver

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/asagi0398/spinpick/internal/randdraw"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"go.uber.org/zap"
)

// MaxPickerSlots is how many fingers can rest on the screen at once.
const MaxPickerSlots = 5

// minPickerSlots は抽選成立に必要な最小参加人数
const minPickerSlots = 2

// TouchSlot は画面に置かれている指1本分の登録情報
type TouchSlot struct {
	Slot         int       `json:"slot"`
	Color        string    `json:"color"`
	RegisteredAt time.Time `json:"registered_at"`
}

type pickerState struct {
	mu     sync.Mutex
	slots  map[int]TouchSlot
	winner *int
}

var currentPicker = pickerState{
	slots: make(map[int]TouchSlot),
}

// スロット番号ごとの固定色（タッチした指の目印）
var pickerColors = [MaxPickerSlots]string{
	"#f44336", "#2196f3", "#4caf50", "#ff9800", "#9c27b0",
}

type pickerTouchRequest struct {
	Slot int `json:"slot"`
}

// RegisterPickerRoutes はマルチタッチピッカーのルートを登録
func RegisterPickerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/picker", corsMiddleware(handlePickerState))
	mux.HandleFunc("/api/picker/touch", corsMiddleware(handlePickerTouch))
	mux.HandleFunc("/api/picker/touch/", corsMiddleware(handlePickerTouchItem))
	mux.HandleFunc("/api/picker/pick", corsMiddleware(handlePickerPick))
	mux.HandleFunc("/api/picker/clear", corsMiddleware(handlePickerClear))
}

func handlePickerState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentPicker.mu.Lock()
	defer currentPicker.mu.Unlock()
	writeJSON(w, http.StatusOK, pickerSnapshotLocked())
}

// handlePickerTouch は指1本の登録を処理する。スロット番号未指定なら空きの
// 最小番号に割り当てる。
func handlePickerTouch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req pickerTouchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	currentPicker.mu.Lock()
	defer currentPicker.mu.Unlock()

	slot := req.Slot
	if slot == 0 {
		for i := 1; i <= MaxPickerSlots; i++ {
			if _, taken := currentPicker.slots[i]; !taken {
				slot = i
				break
			}
		}
	}
	if slot < 1 || slot > MaxPickerSlots {
		http.Error(w, "No free slot available", http.StatusBadRequest)
		return
	}
	if _, taken := currentPicker.slots[slot]; taken {
		http.Error(w, "Slot already registered", http.StatusConflict)
		return
	}

	currentPicker.slots[slot] = TouchSlot{
		Slot:         slot,
		Color:        pickerColors[slot-1],
		RegisteredAt: time.Now(),
	}
	// 新しい指が置かれたら前回の結果は無効
	currentPicker.winner = nil

	logger.Debug("Picker slot registered", zap.Int("slot", slot))
	snapshot := pickerSnapshotLocked()
	BroadcastWSMessage("picker_updated", snapshot)
	writeJSON(w, http.StatusOK, snapshot)
}

// handlePickerTouchItem は /api/picker/touch/{slot} の指の解除を処理する。
func handlePickerTouchItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slotRaw := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/picker/touch/"))
	slot, err := strconv.Atoi(slotRaw)
	if err != nil || slot < 1 || slot > MaxPickerSlots {
		http.Error(w, "Invalid slot", http.StatusBadRequest)
		return
	}

	currentPicker.mu.Lock()
	defer currentPicker.mu.Unlock()

	if _, ok := currentPicker.slots[slot]; !ok {
		http.Error(w, "Slot not registered", http.StatusNotFound)
		return
	}
	delete(currentPicker.slots, slot)
	currentPicker.winner = nil

	snapshot := pickerSnapshotLocked()
	BroadcastWSMessage("picker_updated", snapshot)
	writeJSON(w, http.StatusOK, snapshot)
}

// handlePickerPick は登録中のスロットから1本を一様抽選で選ぶ。
func handlePickerPick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentPicker.mu.Lock()
	defer currentPicker.mu.Unlock()

	if len(currentPicker.slots) < minPickerSlots {
		http.Error(w, "Need at least 2 registered fingers", http.StatusBadRequest)
		return
	}

	// 抽選はスロット番号順の登録済みリストに対して行う
	registered := registeredSlotsLocked()
	idx, err := randdraw.PickIndex(len(registered))
	if err != nil {
		logger.Error("Failed to pick finger", zap.Error(err))
		http.Error(w, "Failed to pick finger", http.StatusInternalServerError)
		return
	}

	winner := registered[idx].Slot
	currentPicker.winner = &winner

	logger.Info("Finger picked",
		zap.Int("winner_slot", winner),
		zap.Int("registered", len(registered)))

	snapshot := pickerSnapshotLocked()
	BroadcastWSMessage("picker_result", snapshot)
	writeJSON(w, http.StatusOK, snapshot)
}

func handlePickerClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentPicker.mu.Lock()
	defer currentPicker.mu.Unlock()

	currentPicker.slots = make(map[int]TouchSlot)
	currentPicker.winner = nil

	snapshot := pickerSnapshotLocked()
	BroadcastWSMessage("picker_updated", snapshot)
	writeJSON(w, http.StatusOK, snapshot)
}

func registeredSlotsLocked() []TouchSlot {
	slots := make([]TouchSlot, 0, len(currentPicker.slots))
	for _, s := range currentPicker.slots {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Slot < slots[j].Slot
	})
	return slots
}

func pickerSnapshotLocked() map[string]interface{} {
	snapshot := map[string]interface{}{
		"slots":     registeredSlotsLocked(),
		"max_slots": MaxPickerSlots,
	}
	if currentPicker.winner != nil {
		snapshot["winner_slot"] = *currentPicker.winner
	}
	return snapshot
}
