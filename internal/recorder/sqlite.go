package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists evaluation history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			strategy       TEXT NOT NULL,
			signal         TEXT,
			bar_limit      INTEGER,
			capital_start  REAL,
			capital_end    REAL,
			positions_end  REAL,
			drawdown       REAL,
			platform_fees  REAL,
			profit         REAL,
			profit_pct     REAL,
			capital_min    REAL,
			capital_max    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_run ON evaluations(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_symbol ON evaluations(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS capital_curves (
			evaluation_id INTEGER NOT NULL REFERENCES evaluations(id),
			bar_index     INTEGER NOT NULL,
			capital       REAL NOT NULL,
			PRIMARY KEY (evaluation_id, bar_index)
		)`,

		`CREATE TABLE IF NOT EXISTS batch_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL UNIQUE,
			timestamp   INTEGER NOT NULL,
			requested   INTEGER,
			evaluated   INTEGER,
			failed      INTEGER,
			best_symbol TEXT,
			best_profit REAL,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batch_ts ON batch_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordEvaluation stores the result row and its capital curve in one transaction.
func (r *SQLiteRecorder) RecordEvaluation(rec *EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := rec.Result
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	out, err := tx.Exec(`INSERT INTO evaluations
		(run_id, timestamp, symbol, strategy, signal, bar_limit,
		 capital_start, capital_end, positions_end, drawdown, platform_fees,
		 profit, profit_pct, capital_min, capital_max)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, time.Now().Unix(), rec.Symbol, rec.Strategy, rec.Signal, rec.Limit,
		res.CapitalStart, res.CapitalEnd, res.PositionsEnd, res.Drawdown, res.PlatformFees,
		res.Profit(), res.ProfitPercentage(), res.Min(), res.Max(),
	)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO capital_curves (evaluation_id, bar_index, capital) VALUES (?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, v := range res.CapitalCurve {
		if _, err := stmt.Exec(id, i, v); err != nil {
			return fmt.Errorf("insert curve point %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordBatch(rec *BatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bestSymbol sql.NullString
	var bestProfit sql.NullFloat64
	if rec.Best != nil {
		bestSymbol = sql.NullString{String: rec.Best.Symbol, Valid: true}
		bestProfit = sql.NullFloat64{Float64: rec.Best.Profit(), Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO batch_runs
		(run_id, timestamp, requested, evaluated, failed, best_symbol, best_profit, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.RunID, time.Now().Unix(), rec.Requested, rec.Evaluated, rec.Failed,
		bestSymbol, bestProfit, rec.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
