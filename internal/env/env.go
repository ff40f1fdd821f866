package env

import (
	"os"
	"strconv"

	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Env holds process-level configuration loaded from the environment.
// Runtime-tunable settings live in the settings table, not here.
type Env struct {
	ServerPort int
	DebugMode  bool
	DBPath     string
}

// Value is the loaded configuration. LoadEnv must be called before use.
var Value Env

// LoadEnv loads .env (if present) and populates Value.
func LoadEnv() {
	// .envが無いのは正常系（本番はOSの環境変数のみ）
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	Value = Env{
		ServerPort: intFromEnv("SERVER_PORT", 0),
		DebugMode:  boolFromEnv("DEBUG_MODE", false),
		DBPath:     os.Getenv("SPINPICK_DB_PATH"),
	}
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Invalid integer environment variable, using fallback",
			zap.String("key", key),
			zap.String("value", raw))
		return fallback
	}
	return v
}

func boolFromEnv(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	return raw == "true" || raw == "1"
}
