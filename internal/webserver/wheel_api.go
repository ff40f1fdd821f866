package webserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/asagi0398/spinpick/internal/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type wheelOptionRequest struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	Weight  *int   `json:"weight"`
	Enabled *bool  `json:"enabled"`
}

type wheelRequest struct {
	Name    string               `json:"name"`
	Options []wheelOptionRequest `json:"options"`
}

// RegisterWheelRoutes はホイール関連のルートを登録
func RegisterWheelRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/wheels", corsMiddleware(handleWheels))
	mux.HandleFunc("/api/wheels/", corsMiddleware(handleWheelSubroutes))
	mux.HandleFunc("/api/history/", corsMiddleware(handleHistoryItem))
}

// handleWheels はホイール一覧の取得と新規作成を処理する。
func handleWheels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		wheels, err := localdb.GetAllWheels()
		if err != nil {
			logger.Error("Failed to get wheels", zap.Error(err))
			http.Error(w, "Failed to get wheels", http.StatusInternalServerError)
			return
		}
		if wheels == nil {
			wheels = []types.Wheel{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"wheels": wheels,
		})

	case http.MethodPost:
		var req wheelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		wheel, err := wheelFromRequest(req, "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := localdb.SaveWheel(*wheel); err != nil {
			logger.Error("Failed to save wheel", zap.Error(err))
			http.Error(w, "Failed to save wheel", http.StatusInternalServerError)
			return
		}

		logger.Info("Wheel created",
			zap.String("wheel_id", wheel.ID),
			zap.String("name", wheel.Name),
			zap.Int("option_count", len(wheel.Options)))
		BroadcastWSMessage("wheel_created", wheel)
		writeJSON(w, http.StatusCreated, wheel)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleWheelSubroutes dispatches /api/wheels/{id}, /api/wheels/{id}/spin and
// /api/wheels/{id}/history.
func handleWheelSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/wheels/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		handleWheelItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "spin":
		handleWheelSpin(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "history":
		handleWheelHistory(w, r, parts[0])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func handleWheelItem(w http.ResponseWriter, r *http.Request, wheelID string) {
	switch r.Method {
	case http.MethodGet:
		wheel, err := localdb.GetWheel(wheelID)
		if err != nil {
			logger.Error("Failed to get wheel", zap.String("wheel_id", wheelID), zap.Error(err))
			http.Error(w, "Failed to get wheel", http.StatusInternalServerError)
			return
		}
		if wheel == nil {
			http.Error(w, "Wheel not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, wheel)

	case http.MethodPut:
		existing, err := localdb.GetWheel(wheelID)
		if err != nil {
			http.Error(w, "Failed to get wheel", http.StatusInternalServerError)
			return
		}
		if existing == nil {
			http.Error(w, "Wheel not found", http.StatusNotFound)
			return
		}

		var req wheelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		wheel, err := wheelFromRequest(req, wheelID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		wheel.CreatedAt = existing.CreatedAt

		if err := localdb.SaveWheel(*wheel); err != nil {
			logger.Error("Failed to update wheel", zap.String("wheel_id", wheelID), zap.Error(err))
			http.Error(w, "Failed to update wheel", http.StatusInternalServerError)
			return
		}

		BroadcastWSMessage("wheel_updated", wheel)
		writeJSON(w, http.StatusOK, wheel)

	case http.MethodDelete:
		if err := localdb.DeleteWheel(wheelID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "Wheel not found", http.StatusNotFound)
				return
			}
			logger.Error("Failed to delete wheel", zap.String("wheel_id", wheelID), zap.Error(err))
			http.Error(w, "Failed to delete wheel", http.StatusInternalServerError)
			return
		}
		BroadcastWSMessage("wheel_deleted", map[string]interface{}{
			"wheel_id": wheelID,
		})
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"id":      wheelID,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// wheelFromRequest validates a create/update payload and builds the wheel.
// Missing IDs are generated, missing weights default, weights out of range
// are rejected rather than silently clamped.
func wheelFromRequest(req wheelRequest, wheelID string) (*types.Wheel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("wheel name must not be empty")
	}
	if len(req.Options) < types.MinEnabledOptions {
		return nil, errors.New("need at least 2 options")
	}

	if wheelID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return nil, errors.New("failed to generate wheel id")
		}
		wheelID = id
	}

	wheel := &types.Wheel{
		ID:        wheelID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	seenIDs := make(map[string]bool, len(req.Options))
	for _, optReq := range req.Options {
		option := types.WheelOption{
			ID:      optReq.ID,
			Label:   strings.TrimSpace(optReq.Label),
			Color:   optReq.Color,
			Weight:  types.DefaultOptionWeight,
			Enabled: true,
		}
		if optReq.Weight != nil {
			option.Weight = *optReq.Weight
		}
		if optReq.Enabled != nil {
			option.Enabled = *optReq.Enabled
		}
		if option.ID == "" {
			id, err := gonanoid.New()
			if err != nil {
				return nil, errors.New("failed to generate option id")
			}
			option.ID = id
		}
		if seenIDs[option.ID] {
			return nil, fmt.Errorf("duplicate option id: %s", option.ID)
		}
		seenIDs[option.ID] = true

		if err := option.Validate(); err != nil {
			return nil, err
		}
		wheel.Options = append(wheel.Options, option)
	}

	return wheel, nil
}
