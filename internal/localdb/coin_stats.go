package localdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/asagi0398/spinpick/internal/types"
	"go.uber.org/zap"
)

// GetCoinStats returns the cumulative coin counters. A missing row reads as
// all zeroes.
func GetCoinStats() (*types.CoinStats, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var stats types.CoinStats
	var lastFlippedAt sql.NullTime
	err := db.QueryRow(`
		SELECT heads, tails, COALESCE(last_side, ''), last_flipped_at
		FROM coin_stats WHERE id = 1
	`).Scan(&stats.Heads, &stats.Tails, &stats.LastSide, &lastFlippedAt)
	if err == sql.ErrNoRows {
		return &types.CoinStats{}, nil
	}
	if err != nil {
		logger.Error("Failed to get coin stats", zap.Error(err))
		return nil, fmt.Errorf("failed to get coin stats: %w", err)
	}

	if lastFlippedAt.Valid {
		stats.LastFlippedAt = &lastFlippedAt.Time
	}
	return &stats, nil
}

// RecordFlip increments the counter for one side and stamps the last outcome.
func RecordFlip(side string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	column := "heads"
	if side == "tails" {
		column = "tails"
	} else if side != "heads" {
		return fmt.Errorf("unknown coin side: %s", side)
	}

	// シングルトン行をUPSERTで更新
	query := fmt.Sprintf(`
		INSERT INTO coin_stats (id, %s, last_side, last_flipped_at)
		VALUES (1, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			%s = coin_stats.%s + 1,
			last_side = excluded.last_side,
			last_flipped_at = excluded.last_flipped_at
	`, column, column, column)

	if _, err := db.Exec(query, side, time.Now()); err != nil {
		logger.Error("Failed to record coin flip", zap.String("side", side), zap.Error(err))
		return fmt.Errorf("failed to record coin flip: %w", err)
	}
	return nil
}

// ResetCoinStats zeroes the counters.
func ResetCoinStats() error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if _, err := db.Exec(`DELETE FROM coin_stats WHERE id = 1`); err != nil {
		logger.Error("Failed to reset coin stats", zap.Error(err))
		return fmt.Errorf("failed to reset coin stats: %w", err)
	}

	logger.Info("Coin stats reset")
	return nil
}
