package webserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/settings"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/asagi0398/spinpick/internal/types"
	"github.com/asagi0398/spinpick/internal/wheel"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var errNotEnoughOptions = errors.New("need at least 2 enabled options")

type spinRequest struct {
	BaseOffsetDegrees float64 `json:"base_offset_degrees"`
}

type spinResult struct {
	winner      types.WheelOption
	winnerIndex int
	angle       float64
	record      types.SpinRecord
	durationMS  int
}

// handleWheelSpin は1回のスピンを実行する。当選者を重み付き抽選で先に決め、
// その当選セクターに静止する目標角度を返す（角度から当選を逆算しない）。
func handleWheelSpin(w http.ResponseWriter, r *http.Request, wheelID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req spinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := executeSpin(wheelID, req.BaseOffsetDegrees)
	if err != nil {
		handleSpinError(w, err)
		return
	}

	broadcastSpin(wheelID, result)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"winner":       result.winner,
		"winner_index": result.winnerIndex,
		"angle":        result.angle,
		"record":       result.record,
		"duration_ms":  result.durationMS,
	})
}

func executeSpin(wheelID string, baseOffsetDegrees float64) (*spinResult, error) {
	stored, err := localdb.GetWheel(wheelID)
	if err != nil {
		logger.Error("Failed to load wheel for spin", zap.String("wheel_id", wheelID), zap.Error(err))
		return nil, err
	}
	if stored == nil {
		return nil, errWheelNotFound
	}

	enabled := stored.EnabledOptions()
	if len(enabled) < types.MinEnabledOptions {
		return nil, errNotEnoughOptions
	}

	entries := make([]wheel.Entry, len(enabled))
	for i, option := range enabled {
		entries[i] = wheel.Entry{Index: i, Weight: option.Weight}
	}

	winnerIndex, err := wheel.SelectWeighted(entries)
	if err != nil {
		return nil, err
	}
	winner := enabled[winnerIndex]

	sm := settings.NewSettingsManager(localdb.GetDB())
	minTurns := sm.GetInt("SPIN_MIN_TURNS", 5)
	durationMS := sm.GetInt("SPIN_DURATION_MS", 4000)

	angle, err := wheel.SpinTarget(winnerIndex, len(enabled), baseOffsetDegrees, minTurns)
	if err != nil {
		return nil, err
	}

	recordID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	record := types.SpinRecord{
		ID:       recordID,
		WheelID:  wheelID,
		OptionID: winner.ID,
		Label:    winner.Label,
		Angle:    angle,
		SpunAt:   time.Now(),
	}

	// 履歴保存に失敗してもスピン結果自体は返す
	if err := localdb.SaveSpinRecord(record); err != nil {
		logger.Warn("Failed to save spin record", zap.Error(err))
	} else if err := localdb.TrimSpinHistory(wheelID, sm.GetInt("HISTORY_LIMIT", localdb.DefaultHistoryLimit)); err != nil {
		logger.Warn("Failed to trim spin history", zap.Error(err))
	}

	logger.Info("Wheel spun",
		zap.String("wheel_id", wheelID),
		zap.String("winner_id", winner.ID),
		zap.String("winner_label", winner.Label),
		zap.Float64("angle", angle))

	return &spinResult{
		winner:      winner,
		winnerIndex: winnerIndex,
		angle:       angle,
		record:      record,
		durationMS:  durationMS,
	}, nil
}

var errWheelNotFound = errors.New("wheel not found")

func handleSpinError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errWheelNotFound):
		http.Error(w, "Wheel not found", http.StatusNotFound)
	case errors.Is(err, errNotEnoughOptions):
		http.Error(w, "Need at least 2 enabled options", http.StatusBadRequest)
	case errors.Is(err, wheel.ErrNoEntries), errors.Is(err, wheel.ErrNoPositiveWeight):
		http.Error(w, "Need at least 2 enabled options", http.StatusBadRequest)
	default:
		logger.Error("Failed to spin wheel", zap.Error(err))
		http.Error(w, "Failed to spin wheel", http.StatusInternalServerError)
	}
}

func broadcastSpin(wheelID string, result *spinResult) {
	BroadcastWSMessage("wheel_spun", map[string]interface{}{
		"wheel_id":     wheelID,
		"winner":       result.winner,
		"winner_index": result.winnerIndex,
		"angle":        result.angle,
		"duration_ms":  result.durationMS,
		"spun_at":      result.record.SpunAt,
	})
}
