package webserver

import (
	"net/http"
	"time"

	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/randdraw"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"go.uber.org/zap"
)

// RegisterCoinRoutes はコイントスのルートを登録
func RegisterCoinRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/coin/flip", corsMiddleware(handleCoinFlip))
	mux.HandleFunc("/api/coin/stats", corsMiddleware(handleCoinStats))
	mux.HandleFunc("/api/coin/reset", corsMiddleware(handleCoinReset))
}

// handleCoinFlip は1回のコイントスを実行し、累計カウンタを更新する。
func handleCoinFlip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	side := randdraw.FlipCoin()

	if err := localdb.RecordFlip(string(side)); err != nil {
		logger.Error("Failed to record coin flip", zap.Error(err))
		http.Error(w, "Failed to record coin flip", http.StatusInternalServerError)
		return
	}

	stats, err := localdb.GetCoinStats()
	if err != nil {
		logger.Error("Failed to get coin stats", zap.Error(err))
		http.Error(w, "Failed to get coin stats", http.StatusInternalServerError)
		return
	}

	logger.Info("Coin flipped", zap.String("side", string(side)))

	BroadcastWSMessage("coin_flipped", map[string]interface{}{
		"side":       side,
		"stats":      stats,
		"flipped_at": time.Now(),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"side":  side,
		"stats": stats,
	})
}

func handleCoinStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := localdb.GetCoinStats()
	if err != nil {
		logger.Error("Failed to get coin stats", zap.Error(err))
		http.Error(w, "Failed to get coin stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func handleCoinReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := localdb.ResetCoinStats(); err != nil {
		logger.Error("Failed to reset coin stats", zap.Error(err))
		http.Error(w, "Failed to reset coin stats", http.StatusInternalServerError)
		return
	}

	BroadcastWSMessage("coin_stats_reset", map[string]interface{}{
		"reset_at": time.Now(),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
