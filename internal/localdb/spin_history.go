package localdb

import (
	"fmt"

	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/asagi0398/spinpick/internal/types"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is how many spin records are kept per wheel unless the
// HISTORY_LIMIT setting says otherwise.
const DefaultHistoryLimit = 50

// SaveSpinRecord appends one spin result to the history.
func SaveSpinRecord(record types.SpinRecord) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	_, err := db.Exec(`
		INSERT INTO spin_history (id, wheel_id, option_id, label, angle, spun_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, record.WheelID, record.OptionID, record.Label, record.Angle, record.SpunAt)
	if err != nil {
		logger.Error("Failed to save spin record",
			zap.String("wheel_id", record.WheelID),
			zap.Error(err))
		return fmt.Errorf("failed to save spin record: %w", err)
	}

	return nil
}

// GetSpinHistory returns the most recent spins for a wheel, newest first.
// limit <= 0 means no limit.
func GetSpinHistory(wheelID string, limit int) ([]types.SpinRecord, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT id, wheel_id, option_id, label, angle, spun_at
		FROM spin_history
		WHERE wheel_id = ?
		ORDER BY spun_at DESC, id DESC
	`
	args := []interface{}{wheelID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		logger.Error("Failed to query spin history", zap.String("wheel_id", wheelID), zap.Error(err))
		return nil, fmt.Errorf("failed to query spin history: %w", err)
	}
	defer rows.Close()

	var records []types.SpinRecord
	for rows.Next() {
		var r types.SpinRecord
		if err := rows.Scan(&r.ID, &r.WheelID, &r.OptionID, &r.Label, &r.Angle, &r.SpunAt); err != nil {
			return nil, fmt.Errorf("failed to scan spin record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteSpinRecord removes a single history entry.
func DeleteSpinRecord(recordID string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	result, err := db.Exec(`DELETE FROM spin_history WHERE id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete spin record: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("spin record not found: %s", recordID)
	}
	return nil
}

// TrimSpinHistory drops everything beyond the newest keep records for a
// wheel. Called after every spin so the history stays bounded.
func TrimSpinHistory(wheelID string, keep int) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	if keep <= 0 {
		keep = DefaultHistoryLimit
	}

	_, err := db.Exec(`
		DELETE FROM spin_history
		WHERE wheel_id = ?
		AND id NOT IN (
			SELECT id FROM spin_history
			WHERE wheel_id = ?
			ORDER BY spun_at DESC, id DESC
			LIMIT ?
		)
	`, wheelID, wheelID, keep)
	if err != nil {
		logger.Warn("Failed to trim spin history", zap.String("wheel_id", wheelID), zap.Error(err))
		return fmt.Errorf("failed to trim spin history: %w", err)
	}
	return nil
}
