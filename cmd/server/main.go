package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asagi0398/spinpick/internal/env"
	"github.com/asagi0398/spinpick/internal/localdb"
	"github.com/asagi0398/spinpick/internal/settings"
	"github.com/asagi0398/spinpick/internal/shared/logger"
	"github.com/asagi0398/spinpick/internal/shared/paths"
	"github.com/asagi0398/spinpick/internal/version"
	"github.com/asagi0398/spinpick/internal/webserver"
	"go.uber.org/zap"
)

func main() {
	logger.Init(false)
	defer logger.Sync()

	logger.Info("Starting spinpick server", zap.String("version", version.String()))

	env.LoadEnv()
	if env.Value.DebugMode {
		logger.Init(true)
		logger.Info("Debug mode enabled")
	}

	if err := paths.EnsureDataDirs(); err != nil {
		logger.Fatal("Failed to ensure data directories", zap.Error(err))
	}

	dbPath := env.Value.DBPath
	if dbPath == "" {
		dbPath = paths.GetDBPath()
	}
	if _, err := localdb.SetupDB(dbPath); err != nil {
		logger.Fatal("Failed to setup database", zap.Error(err))
	}

	sm := settings.NewSettingsManager(localdb.GetDB())
	if err := sm.InitializeDefaultSettings(); err != nil {
		logger.Fatal("Failed to initialize settings", zap.Error(err))
	}

	// 初回起動時のみサンプルホイールを投入
	if err := localdb.SeedDefaultWheels(); err != nil {
		logger.Warn("Failed to seed default wheels", zap.Error(err))
	}

	port := 8080
	if env.Value.ServerPort != 0 {
		port = env.Value.ServerPort
	}

	if err := webserver.StartWebServer(port); err != nil {
		logger.Fatal("Failed to start web server", zap.Error(err))
	}

	logger.Info("Server started",
		zap.Int("port", port),
		zap.String("api", fmt.Sprintf("http://localhost:%d/api/", port)))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")

	webserver.Shutdown()
	if err := localdb.CloseDB(); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
