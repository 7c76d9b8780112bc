package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CoinSentinel/internal/model"
)

// SQLiteRecorder persists trade records to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs the
// create-if-absent migration.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so operator tooling can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS trade_log (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		datetime TEXT,
		action   TEXT,
		market   TEXT,
		volume   REAL,
		price    REAL,
		reason   TEXT
	)`)
	if err != nil {
		return fmt.Errorf("create trade_log: %w", err)
	}
	return nil
}

// RecordTrade appends one row to trade_log.
func (r *SQLiteRecorder) RecordTrade(rec *model.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Format("2006-01-02 15:04:05")
	_, err := r.db.Exec(`INSERT INTO trade_log
		(datetime, action, market, volume, price, reason)
		VALUES (?,?,?,?,?,?)`,
		now, string(rec.Action), rec.Market, rec.Volume, rec.Price, rec.Reason,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
