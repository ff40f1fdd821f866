package webserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/randdraw"
	"github.com/asagi0398/spinpick/internal/settings"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"go.uber.org/zap"
)

type rngDrawRequest struct {
	Min             *int  `json:"min"`
	Max             *int  `json:"max"`
	Count           *int  `json:"count"`
	AllowDuplicates *bool `json:"allow_duplicates"`
}

// RegisterRNGRoutes は数値抽選のルートを登録
func RegisterRNGRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/rng/draw", corsMiddleware(handleRNGDraw))
}

// handleRNGDraw draws bounded random integers. Request fields override the
// stored RNG_* defaults; min/max are normalized (swapped when inverted)
// before validation, the count never is.
func handleRNGDraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rngDrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sm := settings.NewSettingsManager(localdb.GetDB())
	cfg := randdraw.Config{
		Min:             sm.GetInt("RNG_MIN", 1),
		Max:             sm.GetInt("RNG_MAX", 100),
		Count:           sm.GetInt("RNG_COUNT", 1),
		AllowDuplicates: sm.GetBool("RNG_ALLOW_DUPLICATES", true),
	}
	if req.Min != nil {
		cfg.Min = *req.Min
	}
	if req.Max != nil {
		cfg.Max = *req.Max
	}
	if req.Count != nil {
		cfg.Count = *req.Count
	}
	if req.AllowDuplicates != nil {
		cfg.AllowDuplicates = *req.AllowDuplicates
	}

	// ユーザー編集値の正規化はここ（呼び出し側）の責務
	if cfg.Min > cfg.Max {
		cfg.Min, cfg.Max = cfg.Max, cfg.Min
	}

	values, err := randdraw.Integers(cfg)
	if err != nil {
		handleRNGError(w, err)
		return
	}

	logger.Info("Numbers drawn",
		zap.Int("min", cfg.Min),
		zap.Int("max", cfg.Max),
		zap.Int("count", cfg.Count),
		zap.Bool("allow_duplicates", cfg.AllowDuplicates))

	BroadcastWSMessage("rng_drawn", map[string]interface{}{
		"values":   values,
		"config":   cfg,
		"drawn_at": time.Now(),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"values": values,
		"config": cfg,
	})
}

func handleRNGError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, randdraw.ErrInvalidRange):
		http.Error(w, "Minimum must not exceed maximum", http.StatusBadRequest)
	case errors.Is(err, randdraw.ErrInvalidCount):
		http.Error(w, "Count must be greater than 0", http.StatusBadRequest)
	case errors.Is(err, randdraw.ErrCountExceedsRange):
		http.Error(w, "Count exceeds unique values in range", http.StatusBadRequest)
	case errors.Is(err, randdraw.ErrRangeTooWide):
		http.Error(w, "Range too wide for a duplicate-free draw", http.StatusBadRequest)
	default:
		logger.Error("Failed to draw numbers", zap.Error(err))
		http.Error(w, "Failed to draw numbers", http.StatusInternalServerError)
	}
}
