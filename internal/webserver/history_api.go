package webserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/asagi0398/spinpick/internal/types"
	"go.uber.org/zap"
)

// handleWheelHistory は1ホイールのスピン履歴一覧を返す。
func handleWheelHistory(w http.ResponseWriter, r *http.Request, wheelID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	limitRaw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	history, err := localdb.GetSpinHistory(wheelID, limit)
	if err != nil {
		logger.Error("Failed to get spin history", zap.String("wheel_id", wheelID), zap.Error(err))
		http.Error(w, "Failed to get spin history", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []types.SpinRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
	})
}

// handleHistoryItem はスピン履歴1件の削除を処理する。
func handleHistoryItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recordID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/history/"))
	if recordID == "" || strings.Contains(recordID, "/") {
		http.Error(w, "Invalid history ID", http.StatusBadRequest)
		return
	}

	if err := localdb.DeleteSpinRecord(recordID); err != nil {
		logger.Error("Failed to delete spin record", zap.String("record_id", recordID), zap.Error(err))
		http.Error(w, "Failed to delete spin record", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      recordID,
	})
}
