package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "spinpick"

// GetDataDir returns the application data directory (XDG data home based).
func GetDataDir() string {
	return filepath.Join(xdg.DataHome, appDirName)
}

// GetDBPath returns the default path of the local sqlite database. The
// SPINPICK_DB_PATH override is applied by the caller via env.Value.DBPath.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "local.db")
}

// EnsureDataDirs creates the data directories if they do not exist.
func EnsureDataDirs() error {
	return os.MkdirAll(GetDataDir(), 0o755)
}
