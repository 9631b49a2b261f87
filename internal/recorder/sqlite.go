package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MomentumScreener/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			trigger_type   TEXT,
			source         TEXT,
			started_at     INTEGER NOT NULL,
			finished_at    INTEGER,
			tickers        INTEGER,
			batches_total  INTEGER,
			batches_failed INTEGER,
			records        INTEGER,
			ranked         INTEGER,
			failed_tickers TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS rankings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			position       INTEGER NOT NULL,
			ticker         TEXT NOT NULL,
			total_return   REAL,
			average_return REAL,
			increases      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_run ON rankings(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_ticker ON rankings(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(id, trigger_type, source, started_at, finished_at, tickers,
		 batches_total, batches_failed, records, ranked, failed_tickers)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, string(run.Trigger), run.Source,
		run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Tickers,
		run.BatchesTotal, run.BatchesFailed, run.Records, run.Ranked,
		strings.Join(run.FailedTickers, ","),
	)
	return err
}

// RecordRanking stores the ranking of a run in one transaction; position is 1-based.
func (r *SQLiteRecorder) RecordRanking(runID string, ranking []model.RankedEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO rankings
		(run_id, position, ticker, total_return, average_return, increases)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, e := range ranking {
		if _, err := stmt.Exec(runID, i+1, e.Ticker, e.TotalReturn, e.AverageReturn, e.Increases); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.Ticker, err)
		}
	}
	return tx.Commit()
}

// LatestRanking returns the ranking of the most recent run that produced one, best first.
// An empty history yields an empty run ID and no error.
func (r *SQLiteRecorder) LatestRanking() (string, []model.RankedEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var runID string
	err := r.db.QueryRow(`SELECT r.id FROM runs r
		WHERE EXISTS (SELECT 1 FROM rankings k WHERE k.run_id = r.id)
		ORDER BY r.started_at DESC, r.rowid DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("latest run: %w", err)
	}

	rows, err := r.db.Query(`SELECT ticker, total_return, average_return, increases
		FROM rankings WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return "", nil, fmt.Errorf("query rankings: %w", err)
	}
	defer rows.Close()

	var out []model.RankedEntry
	for rows.Next() {
		var e model.RankedEntry
		if err := rows.Scan(&e.Ticker, &e.TotalReturn, &e.AverageReturn, &e.Increases); err != nil {
			return "", nil, fmt.Errorf("scan ranking: %w", err)
		}
		out = append(out, e)
	}
	return runID, out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
