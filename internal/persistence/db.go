// Package persistence stores run metadata and per-day market history in
// SQLite so finished or running simulations can be inspected.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/stats"
)

// DB wraps a SQLite connection. Every row is scoped to the run started
// with StartRun.
type DB struct {
	conn  *sqlx.DB
	runID uuid.UUID
}

// Run describes one simulation run.
type Run struct {
	ID      string    `db:"id" json:"id"`
	Seed    int64     `db:"seed" json:"seed"`
	Started time.Time `db:"started" json:"started"`
}

// PriceRow is the market summary of one resource on one day.
type PriceRow struct {
	Day           uint64        `db:"day" json:"day"`
	Resource      string        `db:"resource" json:"resource"`
	BuyOrders     int           `db:"buy_orders" json:"buy_orders"`
	SellOrders    int           `db:"sell_orders" json:"sell_orders"`
	EligibleBuys  int           `db:"eligible_buys" json:"eligible_buys"`
	EligibleSells int           `db:"eligible_sells" json:"eligible_sells"`
	Transactions  int           `db:"transactions" json:"transactions"`
	MinPrice      sql.NullInt64 `db:"min_price" json:"-"`
	MedianPrice   sql.NullInt64 `db:"median_price" json:"-"`
	MaxPrice      sql.NullInt64 `db:"max_price" json:"-"`
	SellMedian    sql.NullInt64 `db:"sell_median" json:"-"`
	BuyMedian     sql.NullInt64 `db:"buy_median" json:"-"`
}

// MoneyRow is the money supply and population at the end of a day.
type MoneyRow struct {
	Day        uint64 `db:"day" json:"day"`
	Total      int64  `db:"total" json:"total"`
	Population int    `db:"population" json:"population"`
}

// ErrNoRun is returned by writes made before StartRun.
var ErrNoRun = errors.New("no run started")

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS market_stats (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		resource TEXT NOT NULL,
		buy_orders INTEGER NOT NULL,
		sell_orders INTEGER NOT NULL,
		eligible_buys INTEGER NOT NULL,
		eligible_sells INTEGER NOT NULL,
		transactions INTEGER NOT NULL,
		min_price INTEGER,
		median_price INTEGER,
		max_price INTEGER,
		sell_median INTEGER,
		buy_median INTEGER,
		PRIMARY KEY (run_id, day, resource)
	);

	CREATE TABLE IF NOT EXISTS money (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		total INTEGER NOT NULL,
		population INTEGER NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_market_resource ON market_stats(run_id, resource);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a new run and makes it the target of later writes.
func (db *DB) StartRun(seed int64) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.conn.Exec("INSERT INTO runs (id, seed, started) VALUES (?, ?, ?)",
		id.String(), seed, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	db.runID = id
	if err := db.SaveMeta("current_run", id.String()); err != nil {
		return uuid.Nil, err
	}
	slog.Info("run started", "run", id, "seed", seed)
	return id, nil
}

// UseRun points reads at an existing run.
func (db *DB) UseRun(id uuid.UUID) { db.runID = id }

// CurrentRun returns the run recorded by the latest StartRun, from this
// connection or, failing that, from world_meta.
func (db *DB) CurrentRun() (Run, error) {
	id := db.runID
	if id == uuid.Nil {
		v, err := db.GetMeta("current_run")
		if err != nil {
			return Run{}, ErrNoRun
		}
		if id, err = uuid.Parse(v); err != nil {
			return Run{}, fmt.Errorf("current run %q: %w", v, err)
		}
	}
	var r Run
	err := db.conn.Get(&r, "SELECT id, seed, started FROM runs WHERE id = ?", id.String())
	return r, err
}

func nullMoney(p stats.PriceStats, m economy.Money) sql.NullInt64 {
	if p.Count == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Creds(), Valid: true}
}

// RecordDay writes the day's market snapshots and money supply in one
// transaction.
func (db *DB) RecordDay(day stats.Day, snapshots []stats.StatsForDay, totalMoney economy.Money, population int) error {
	if db.runID == uuid.Nil {
		return ErrNoRun
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO market_stats
		(run_id, day, resource, buy_orders, sell_orders, eligible_buys, eligible_sells,
		 transactions, min_price, median_price, max_price, sell_median, buy_median)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	run := db.runID.String()
	for _, s := range snapshots {
		tr := s.Transactions
		_, err := stmt.Exec(
			run, uint64(s.Day), s.Resource.String(),
			s.Buy.Count, s.Sell.Count, s.EligibleBuy.Count, s.EligibleSell.Count, tr.Count,
			nullMoney(tr, tr.Min), nullMoney(tr, tr.Median), nullMoney(tr, tr.Max),
			nullMoney(s.Sell, s.Sell.Median), nullMoney(s.Buy, s.Buy.Median),
		)
		if err != nil {
			return fmt.Errorf("insert %s stats: %w", s.Resource, err)
		}
	}

	_, err = tx.Exec("INSERT OR REPLACE INTO money (run_id, day, total, population) VALUES (?, ?, ?, ?)",
		run, uint64(day), totalMoney.Creds(), population)
	if err != nil {
		return fmt.Errorf("insert money: %w", err)
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES ('last_day', ?)",
		fmt.Sprintf("%d", uint64(day))); err != nil {
		return err
	}
	return tx.Commit()
}

// Prices returns the market history of one resource, oldest first.
func (db *DB) Prices(r economy.Resource, limit int) ([]PriceRow, error) {
	run, err := db.CurrentRun()
	if err != nil {
		return nil, err
	}
	var rows []PriceRow
	err = db.conn.Select(&rows, `SELECT day, resource, buy_orders, sell_orders, eligible_buys,
			eligible_sells, transactions, min_price, median_price, max_price, sell_median, buy_median
		FROM (SELECT * FROM market_stats WHERE run_id = ? AND resource = ? ORDER BY day DESC LIMIT ?)
		ORDER BY day`, run.ID, r.String(), limit)
	return rows, err
}

// Money returns the recorded money supply, oldest first.
func (db *DB) Money(limit int) ([]MoneyRow, error) {
	run, err := db.CurrentRun()
	if err != nil {
		return nil, err
	}
	var rows []MoneyRow
	err = db.conn.Select(&rows, `SELECT day, total, population
		FROM (SELECT * FROM money WHERE run_id = ? ORDER BY day DESC LIMIT ?)
		ORDER BY day`, run.ID, limit)
	return rows, err
}

// LatestDay returns the last day recorded for the current run, or 0.
func (db *DB) LatestDay() (uint64, error) {
	run, err := db.CurrentRun()
	if err != nil {
		return 0, err
	}
	var day sql.NullInt64
	err = db.conn.Get(&day, "SELECT MAX(day) FROM money WHERE run_id = ?", run.ID)
	return uint64(day.Int64), err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
