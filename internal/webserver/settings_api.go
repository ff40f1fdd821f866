package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/settings"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"go.uber.org/zap"
)

// RegisterSettingsRoutes はアプリ設定のルートを登録
func RegisterSettingsRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/settings", corsMiddleware(handleSettings))
}

func handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handleGetSettings(w, r)
	case http.MethodPut:
		handleUpdateSettings(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func handleGetSettings(w http.ResponseWriter, r *http.Request) {
	sm := settings.NewSettingsManager(localdb.GetDB())
	all, err := sm.GetAllSettings()
	if err != nil {
		logger.Error("Failed to load settings", zap.Error(err))
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handleUpdateSettings はキー/値マップを受け取り1件ずつ検証して保存する。
// 不正なキーや値は全体を400で弾く（部分適用しない）。
func handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(updates) == 0 {
		http.Error(w, "No settings provided", http.StatusBadRequest)
		return
	}

	sm := settings.NewSettingsManager(localdb.GetDB())

	// 先に全て検証してから書き込む
	for key, value := range updates {
		if err := settings.ValidateSetting(key, value); err != nil {
			http.Error(w, fmt.Sprintf("Invalid setting %s: %v", key, err), http.StatusBadRequest)
			return
		}
	}

	for key, value := range updates {
		if err := sm.SetSetting(key, value); err != nil {
			logger.Error("Failed to save setting",
				zap.String("key", key),
				zap.Error(err))
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}
	}

	all, err := sm.GetAllSettings()
	if err != nil {
		logger.Error("Failed to reload settings", zap.Error(err))
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	BroadcastWSMessage("settings_updated", all)
	writeJSON(w, http.StatusOK, all)
}
