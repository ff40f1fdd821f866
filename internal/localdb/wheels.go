package localdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/asagi0398/spinpick/internal/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// SaveWheel inserts or updates a wheel and replaces its option list in a
// single transaction. Option order in the slice becomes the stored position.
func SaveWheel(wheel types.Wheel) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO wheels (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`, wheel.ID, wheel.Name, wheel.CreatedAt, time.Now())
	if err != nil {
		logger.Error("Failed to upsert wheel", zap.String("wheel_id", wheel.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert wheel: %w", err)
	}

	// オプションは全入れ替え（並び順もここで確定する）
	if _, err := tx.Exec(`DELETE FROM wheel_options WHERE wheel_id = ?`, wheel.ID); err != nil {
		return fmt.Errorf("failed to clear wheel options: %w", err)
	}

	for position, option := range wheel.Options {
		_, err := tx.Exec(`
			INSERT INTO wheel_options (id, wheel_id, label, color, weight, enabled, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, option.ID, wheel.ID, option.Label, option.Color, option.Weight, option.Enabled, position)
		if err != nil {
			logger.Error("Failed to insert wheel option",
				zap.String("wheel_id", wheel.ID),
				zap.String("option_id", option.ID),
				zap.Error(err))
			return fmt.Errorf("failed to insert wheel option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wheel: %w", err)
	}

	logger.Debug("Wheel saved",
		zap.String("wheel_id", wheel.ID),
		zap.Int("option_count", len(wheel.Options)))
	return nil
}

// GetWheel loads one wheel with its options ordered by position.
func GetWheel(wheelID string) (*types.Wheel, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var wheel types.Wheel
	err := db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM wheels WHERE id = ?
	`, wheelID).Scan(&wheel.ID, &wheel.Name, &wheel.CreatedAt, &wheel.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to query wheel", zap.String("wheel_id", wheelID), zap.Error(err))
		return nil, fmt.Errorf("failed to query wheel: %w", err)
	}

	options, err := getWheelOptions(wheelID)
	if err != nil {
		return nil, err
	}
	wheel.Options = options

	return &wheel, nil
}

// GetAllWheels returns every stored wheel with options, newest first.
func GetAllWheels() ([]types.Wheel, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.Query(`SELECT id, name, created_at, updated_at FROM wheels ORDER BY created_at DESC`)
	if err != nil {
		logger.Error("Failed to query wheels", zap.Error(err))
		return nil, fmt.Errorf("failed to query wheels: %w", err)
	}
	defer rows.Close()

	var wheels []types.Wheel
	for rows.Next() {
		var wheel types.Wheel
		if err := rows.Scan(&wheel.ID, &wheel.Name, &wheel.CreatedAt, &wheel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wheel: %w", err)
		}
		wheels = append(wheels, wheel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range wheels {
		options, err := getWheelOptions(wheels[i].ID)
		if err != nil {
			return nil, err
		}
		wheels[i].Options = options
	}

	return wheels, nil
}

func getWheelOptions(wheelID string) ([]types.WheelOption, error) {
	db := GetDB()

	rows, err := db.Query(`
		SELECT id, label, color, weight, enabled
		FROM wheel_options
		WHERE wheel_id = ?
		ORDER BY position ASC
	`, wheelID)
	if err != nil {
		logger.Error("Failed to query wheel options", zap.String("wheel_id", wheelID), zap.Error(err))
		return nil, fmt.Errorf("failed to query wheel options: %w", err)
	}
	defer rows.Close()

	var options []types.WheelOption
	for rows.Next() {
		var o types.WheelOption
		if err := rows.Scan(&o.ID, &o.Label, &o.Color, &o.Weight, &o.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan wheel option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// DeleteWheel removes a wheel, its options, and its spin history.
func DeleteWheel(wheelID string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ON DELETE CASCADEはsqliteのforeign_keys設定に依存するため明示的に消す
	if _, err := tx.Exec(`DELETE FROM wheel_options WHERE wheel_id = ?`, wheelID); err != nil {
		return fmt.Errorf("failed to delete wheel options: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM spin_history WHERE wheel_id = ?`, wheelID); err != nil {
		return fmt.Errorf("failed to delete spin history: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM wheels WHERE id = ?`, wheelID)
	if err != nil {
		return fmt.Errorf("failed to delete wheel: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wheel deletion: %w", err)
	}

	logger.Info("Wheel deleted", zap.String("wheel_id", wheelID))
	return nil
}

// SeedDefaultWheels inserts starter wheels when the database has none, so a
// fresh install has something to spin immediately.
func SeedDefaultWheels() error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM wheels`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count wheels: %w", err)
	}
	if count > 0 {
		return nil
	}

	starters := []struct {
		name   string
		labels []string
		colors []string
	}{
		{
			name:   "Yes or No",
			labels: []string{"Yes", "No"},
			colors: []string{"#4caf50", "#f44336"},
		},
		{
			name:   "What's for dinner?",
			labels: []string{"Pizza", "Sushi", "Curry", "Ramen", "Salad", "Burger"},
			colors: []string{"#e91e63", "#9c27b0", "#3f51b5", "#03a9f4", "#8bc34a", "#ff9800"},
		},
	}

	for _, starter := range starters {
		wheelID, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate wheel id: %w", err)
		}

		wheel := types.Wheel{
			ID:        wheelID,
			Name:      starter.name,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		for i, label := range starter.labels {
			optionID, err := gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate option id: %w", err)
			}
			wheel.Options = append(wheel.Options, types.WheelOption{
				ID:      optionID,
				Label:   label,
				Color:   starter.colors[i],
				Weight:  types.DefaultOptionWeight,
				Enabled: true,
			})
		}

		if err := SaveWheel(wheel); err != nil {
			return err
		}
		logger.Info("Seeded starter wheel", zap.String("name", starter.name))
	}

	return nil
}
