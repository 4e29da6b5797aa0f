// Package store provides the SQLite fill journal.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"mork-fetch/internal/models"
)

// Journal persists simulated fills to SQLite. It supplements the JSON
// state snapshot with an append-only trade history that survives
// ledger resets.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (or creates) the journal database at dbPath.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fills (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		mint TEXT NOT NULL,
		side TEXT NOT NULL,
		qty REAL NOT NULL,
		price REAL NOT NULL,
		realized REAL NOT NULL DEFAULT 0,
		source TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_fills_mint ON fills(mint);
	CREATE INDEX IF NOT EXISTS idx_fills_timestamp ON fills(timestamp);
	`
	_, err := j.db.Exec(schema)
	return err
}

// RecordFill appends one fill. An empty ID is assigned automatically.
func (j *Journal) RecordFill(fill models.Fill) error {
	if fill.ID == "" {
		fill.ID = uuid.NewString()
	}
	if fill.Timestamp.IsZero() {
		fill.Timestamp = time.Now()
	}
	_, err := j.db.Exec(`
		INSERT INTO fills (id, timestamp, mint, side, qty, price, realized, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fill.ID, fill.Timestamp, fill.Mint, string(fill.Side),
		fill.Qty, fill.Price, fill.Realized, fill.Source)
	if err != nil {
		return fmt.Errorf("inserting fill: %w", err)
	}
	return nil
}

// RecentFills returns the last n fills, newest first.
func (j *Journal) RecentFills(n int) ([]models.Fill, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := j.db.Query(`
		SELECT id, timestamp, mint, side, qty, price, realized, source
		FROM fills ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying fills: %w", err)
	}
	defer rows.Close()

	var fills []models.Fill
	for rows.Next() {
		var f models.Fill
		var side string
		if err := rows.Scan(&f.ID, &f.Timestamp, &f.Mint, &side,
			&f.Qty, &f.Price, &f.Realized, &f.Source); err != nil {
			return nil, fmt.Errorf("scanning fill: %w", err)
		}
		f.Side = models.FillSide(side)
		fills = append(fills, f)
	}
	return fills, rows.Err()
}

// FillStats summarizes the journal.
type FillStats struct {
	Fills    int
	Buys     int
	Sells    int
	Realized float64
}

// Stats aggregates fill counts and total realized P&L.
func (j *Journal) Stats() (FillStats, error) {
	var s FillStats
	err := j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN side = 'BUY' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN side = 'SELL' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(realized), 0)
		FROM fills`).Scan(&s.Fills, &s.Buys, &s.Sells, &s.Realized)
	if err != nil {
		return FillStats{}, fmt.Errorf("querying fill stats: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
