// Package stats persists completed-game summaries. It is the read-side
// collaborator from the engine's point of view: it consumes final move
// counts, elapsed time and the win flag, and never sees or mutates engine
// state.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Summary is one finished game.
type Summary struct {
	Won        bool
	Moves      int
	ElapsedMs  int64
	DrawMode   int
	FinishedAt time.Time
}

// Totals aggregates the recorded history.
type Totals struct {
	Played   int
	Won      int
	BestWin  int // fewest moves among wins, 0 when no wins yet
	AvgMoves float64
}

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if missing) the sqlite database at dsn and applies
// the schema. WAL journaling and a busy timeout keep concurrent readers
// happy.
func Open(dsn string) (*Store, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS games (
            id          INTEGER PRIMARY KEY AUTOINCREMENT,
            won         INTEGER NOT NULL,
            moves       INTEGER NOT NULL,
            elapsed_ms  INTEGER NOT NULL,
            draw_mode   INTEGER NOT NULL,
            finished_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_games_finished ON games(finished_at);`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one completed-game summary.
func (s *Store) Record(ctx context.Context, sum Summary) error {
	finished := sum.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO games (won, moves, elapsed_ms, draw_mode, finished_at)
        VALUES (?, ?, ?, ?, ?)`,
		sum.Won, sum.Moves, sum.ElapsedMs, sum.DrawMode, finished.UTC(),
	)
	return err
}

// Recent returns the latest summaries, newest first. A non-positive limit
// defaults to 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT won, moves, elapsed_ms, draw_mode, finished_at
        FROM games
        ORDER BY finished_at DESC, id DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Summary, 0, limit)
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.Won, &sum.Moves, &sum.ElapsedMs, &sum.DrawMode, &sum.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Aggregate computes the all-time totals.
func (s *Store) Aggregate(ctx context.Context) (Totals, error) {
	var t Totals
	var best sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(won), 0),
               MIN(CASE WHEN won = 1 THEN moves END),
               AVG(moves)
        FROM games`,
	).Scan(&t.Played, &t.Won, &best, &avg)
	if err != nil {
		return Totals{}, err
	}
	if best.Valid {
		t.BestWin = int(best.Int64)
	}
	if avg.Valid {
		t.AvgMoves = avg.Float64
	}
	return t, nil
}
