package types

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultOptionWeight は新規オプションの重みの初期値
	DefaultOptionWeight = 50
	MinOptionWeight     = 1
	MaxOptionWeight     = 100

	// MinEnabledOptions is the minimum number of enabled, labeled options a
	// wheel needs before a spin is allowed.
	MinEnabledOptions = 2
)

var (
	ErrEmptyLabel    = errors.New("option label must not be empty")
	ErrInvalidWeight = errors.New("option weight must be between 1 and 100")
)

// WheelOption はホイールの1セクターに対応する選択肢
type WheelOption struct {
	ID      string `json:"id" db:"id"`
	Label   string `json:"label" db:"label"`
	Color   string `json:"color" db:"color"` // 表示用カラーコード（抽選には影響しない）
	Weight  int    `json:"weight" db:"weight"`
	Enabled bool   `json:"enabled" db:"enabled"`
}

// Validate checks the option fields at a construction boundary.
func (o WheelOption) Validate() error {
	if strings.TrimSpace(o.Label) == "" {
		return ErrEmptyLabel
	}
	if o.Weight < MinOptionWeight || o.Weight > MaxOptionWeight {
		return ErrInvalidWeight
	}
	return nil
}

// Wheel はユーザー定義のホイール（選択肢の順序付きリスト）
type Wheel struct {
	ID        string        `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Options   []WheelOption `json:"options"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// EnabledOptions returns the options that participate in a draw: enabled and
// with a non-empty label. Order is preserved because the angular position of
// each sector follows the option order.
func (w Wheel) EnabledOptions() []WheelOption {
	enabled := make([]WheelOption, 0, len(w.Options))
	for _, o := range w.Options {
		if o.Enabled && strings.TrimSpace(o.Label) != "" {
			enabled = append(enabled, o)
		}
	}
	return enabled
}

// CanSpin reports whether the wheel has enough enabled options for a draw.
func (w Wheel) CanSpin() bool {
	return len(w.EnabledOptions()) >= MinEnabledOptions
}

// SpinRecord は1回のスピン結果（直近N件のみ保持される）
type SpinRecord struct {
	ID       string    `json:"id" db:"id"`
	WheelID  string    `json:"wheel_id" db:"wheel_id"`
	OptionID string    `json:"option_id" db:"option_id"`
	Label    string    `json:"label" db:"label"`
	Angle    float64   `json:"angle" db:"angle"` // 最終的な静止角度（度）
	SpunAt   time.Time `json:"spun_at" db:"spun_at"`
}

// CoinStats holds the cumulative coin flip counters. Counters only grow until
// an explicit reset.
type CoinStats struct {
	Heads         int        `json:"heads" db:"heads"`
	Tails         int        `json:"tails" db:"tails"`
	LastSide      string     `json:"last_side" db:"last_side"`
	LastFlippedAt *time.Time `json:"last_flipped_at,omitempty" db:"last_flipped_at"`
}
