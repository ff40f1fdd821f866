package settings

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SettingsManager struct {
	db *sql.DB
}

func NewSettingsManager(db *sql.DB) *SettingsManager {
	return &SettingsManager{db: db}
}

// 設定の定義
var DefaultSettings = map[string]Setting{
	// ホイール設定
	"SPIN_DURATION_MS": {
		Key: "SPIN_DURATION_MS", Value: "4000",
		Description: "Spin animation duration in milliseconds (UI reveal delay, cosmetic only)",
	},
	"SPIN_MIN_TURNS": {
		Key: "SPIN_MIN_TURNS", Value: "5",
		Description: "Minimum full rotations before the wheel comes to rest",
	},
	"HISTORY_LIMIT": {
		Key: "HISTORY_LIMIT", Value: "50",
		Description: "Spin history entries kept per wheel",
	},

	// 数値抽選のデフォルト
	"RNG_MIN": {
		Key: "RNG_MIN", Value: "1",
		Description: "Default minimum for the number generator",
	},
	"RNG_MAX": {
		Key: "RNG_MAX", Value: "100",
		Description: "Default maximum for the number generator",
	},
	"RNG_COUNT": {
		Key: "RNG_COUNT", Value: "1",
		Description: "Default draw count for the number generator",
	},
	"RNG_ALLOW_DUPLICATES": {
		Key: "RNG_ALLOW_DUPLICATES", Value: "true",
		Description: "Whether repeated values are allowed in one request by default",
	},

	// フィードバック設定（クライアント側で参照するだけ）
	"MUTE_SOUND": {
		Key: "MUTE_SOUND", Value: "false",
		Description: "Mute spin and result sounds",
	},
	"HAPTICS_ENABLED": {
		Key: "HAPTICS_ENABLED", Value: "true",
		Description: "Enable haptic feedback on supported devices",
	},
}

// CRUD操作
func (sm *SettingsManager) GetSetting(key string) (string, error) {
	var value string
	err := sm.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		// デフォルト値を返す
		if defaultSetting, exists := DefaultSettings[key]; exists {
			return defaultSetting.Value, nil
		}
		return "", fmt.Errorf("setting not found: %s", key)
	}
	return value, err
}

func (sm *SettingsManager) SetSetting(key, value string) error {
	defaultSetting, exists := DefaultSettings[key]
	if !exists {
		return fmt.Errorf("unknown setting key: %s", key)
	}
	if err := ValidateSetting(key, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	_, err := sm.db.Exec(`
		INSERT INTO settings (key, value, description)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		key, value, defaultSetting.Description,
	)
	return err
}

func (sm *SettingsManager) GetAllSettings() (map[string]Setting, error) {
	rows, err := sm.db.Query(`
		SELECT key, value, description, updated_at
		FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]Setting)
	for rows.Next() {
		var s Setting
		var description sql.NullString
		if err := rows.Scan(&s.Key, &s.Value, &description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Description = description.String

		// 既知のキーのみ返す（古いバージョンの残骸は無視）
		if _, known := DefaultSettings[s.Key]; known {
			settings[s.Key] = s
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// DBにない設定はデフォルト値で補完
	for key, defaultSetting := range DefaultSettings {
		if _, exists := settings[key]; !exists {
			settings[key] = defaultSetting
		}
	}

	return settings, nil
}

// GetInt returns a setting parsed as int, falling back when unparsable.
func (sm *SettingsManager) GetInt(key string, fallback int) int {
	raw, err := sm.GetSetting(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// GetBool returns a setting parsed as bool.
func (sm *SettingsManager) GetBool(key string, fallback bool) bool {
	raw, err := sm.GetSetting(key)
	if err != nil {
		return fallback
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return fallback
}

// バリデーション
func ValidateSetting(key, value string) error {
	switch key {
	case "SPIN_DURATION_MS":
		if val, err := strconv.Atoi(value); err != nil || val < 500 || val > 30000 {
			return fmt.Errorf("must be integer between 500 and 30000 milliseconds")
		}
	case "SPIN_MIN_TURNS":
		if val, err := strconv.Atoi(value); err != nil || val < 1 || val > 20 {
			return fmt.Errorf("must be integer between 1 and 20")
		}
	case "HISTORY_LIMIT":
		if val, err := strconv.Atoi(value); err != nil || val < 1 || val > 500 {
			return fmt.Errorf("must be integer between 1 and 500")
		}
	case "RNG_MIN", "RNG_MAX":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("must be an integer")
		}
	case "RNG_COUNT":
		if val, err := strconv.Atoi(value); err != nil || val < 1 || val > 1000 {
			return fmt.Errorf("must be integer between 1 and 1000")
		}
	case "RNG_ALLOW_DUPLICATES", "MUTE_SOUND", "HAPTICS_ENABLED":
		if value != "true" && value != "false" {
			return fmt.Errorf("must be 'true' or 'false'")
		}
	default:
		return fmt.Errorf("unknown setting key: %s", key)
	}
	return nil
}

// 初期設定のセットアップ
func (sm *SettingsManager) InitializeDefaultSettings() error {
	for key, setting := range DefaultSettings {
		// 既に設定が存在する場合はスキップ
		var existingKey string
		if err := sm.db.QueryRow("SELECT key FROM settings WHERE key = ?", key).Scan(&existingKey); err == nil {
			continue
		}

		if err := sm.SetSetting(key, setting.Value); err != nil {
			return fmt.Errorf("failed to initialize setting %s: %w", key, err)
		}
	}
	return nil
}
