package localdb

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

var DBClient *sql.DB

// SetupDB opens (or creates) the local sqlite database and ensures all
// tables exist. Safe to call once at startup; subsequent calls return the
// existing client.
func SetupDB(dbPath string) (*sql.DB, error) {
	if DBClient != nil {
		return DBClient, nil
	}

	// WALモードとBusy Timeoutを設定（Race Condition対策）
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLiteは単一ライターなので接続プールを1に制限
	db.SetMaxOpenConns(1)

	DBClient = db

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS wheels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS wheel_options (
		id TEXT PRIMARY KEY,
		wheel_id TEXT NOT NULL,
		label TEXT NOT NULL,
		color TEXT DEFAULT '',
		weight INTEGER NOT NULL DEFAULT 50,
		enabled BOOLEAN NOT NULL DEFAULT true,
		position INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (wheel_id) REFERENCES wheels(id) ON DELETE CASCADE
	)`)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS spin_history (
		id TEXT PRIMARY KEY,
		wheel_id TEXT NOT NULL,
		option_id TEXT NOT NULL,
		label TEXT NOT NULL,
		angle REAL NOT NULL DEFAULT 0,
		spun_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_spin_history_wheel_spun_at
		ON spin_history(wheel_id, spun_at DESC)`)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS coin_stats (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		heads INTEGER NOT NULL DEFAULT 0,
		tails INTEGER NOT NULL DEFAULT 0,
		last_side TEXT DEFAULT '',
		last_flipped_at TIMESTAMP
	)`)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		description TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// GetDB returns the shared database client, or nil before SetupDB.
func GetDB() *sql.DB {
	return DBClient
}

// CloseDB closes the shared client. Used by tests and shutdown.
func CloseDB() error {
	if DBClient == nil {
		return nil
	}
	err := DBClient.Close()
	DBClient = nil
	return err
}
