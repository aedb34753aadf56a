// Package runstore persists finished discovery runs so their tables can be
// rebuilt later without re-mining the corpus. It works on PostgreSQL and
// SQLite through pkg/database.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/motif"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/database"
	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
	"github.com/google/uuid"
)

// The schema is portable between both drivers. Timestamps are stored as
// Unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		corpus_size   INTEGER NOT NULL,
		support       TEXT NOT NULL,
		threshold     DOUBLE PRECISION NOT NULL,
		pattern_count INTEGER NOT NULL,
		rounds        TEXT NOT NULL,
		created_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS run_patterns (
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		pattern     TEXT NOT NULL,
		occurrences TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

// Run is the summary row of a stored run.
type Run struct {
	ID           string
	CorpusSize   int
	Support      string
	Threshold    float64
	PatternCount int
	CreatedAt    time.Time
}

type Store struct {
	db     *database.Client
	logger *slog.Logger
}

func New(db *database.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "run-store"),
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating run store schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores result under id, or under a fresh UUID when id is empty.
// Patterns keep their discovery order.
func (s *Store) SaveRun(ctx context.Context, id, support string, result *motif.Result) (Run, error) {
	if id == "" {
		id = uuid.NewString()
	}
	rounds, err := json.Marshal(result.Rounds)
	if err != nil {
		return Run{}, fmt.Errorf("marshaling rounds: %w", err)
	}
	run := Run{
		ID:           id,
		CorpusSize:   result.CorpusSize,
		Support:      support,
		Threshold:    result.Threshold,
		PatternCount: result.Len(),
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.db.Rebind(
			`INSERT INTO runs (id, corpus_size, support, threshold, pattern_count, rounds, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			run.ID, run.CorpusSize, run.Support, run.Threshold, run.PatternCount,
			string(rounds), run.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.db.Rebind(
			`INSERT INTO run_patterns (run_id, seq, pattern, occurrences) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("preparing pattern insert: %w", err)
		}
		defer stmt.Close()

		for seq, pattern := range result.Order {
			occ, err := json.Marshal(result.Patterns[pattern])
			if err != nil {
				return fmt.Errorf("marshaling occurrences of %s: %w", pattern, err)
			}
			if _, err := stmt.ExecContext(ctx, run.ID, seq, pattern, string(occ)); err != nil {
				return fmt.Errorf("inserting pattern %s: %w", pattern, err)
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, err
	}

	s.logger.Info("run saved",
		"run_id", run.ID,
		"patterns", run.PatternCount,
		"corpus_size", run.CorpusSize,
	)
	return run, nil
}

// LoadRun rebuilds a stored run. Unknown IDs return ErrNotFound.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, *motif.Result, error) {
	var (
		run       Run
		rounds    string
		createdAt int64
	)
	err := s.db.DB.QueryRowContext(ctx, s.db.Rebind(
		`SELECT id, corpus_size, support, threshold, pattern_count, rounds, created_at
		 FROM runs WHERE id = ?`), id,
	).Scan(&run.ID, &run.CorpusSize, &run.Support, &run.Threshold, &run.PatternCount, &rounds, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, apperrors.Newf(apperrors.ErrNotFound, apperrors.ExitFailure, "run %s", id)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("querying run %s: %w", id, err)
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()

	result := &motif.Result{
		Threshold:  run.Threshold,
		CorpusSize: run.CorpusSize,
		Patterns:   make(map[string]motif.Occurrences, run.PatternCount),
		Order:      make([]string, 0, run.PatternCount),
	}
	if err := json.Unmarshal([]byte(rounds), &result.Rounds); err != nil {
		return Run{}, nil, fmt.Errorf("unmarshaling rounds of run %s: %w", id, err)
	}

	rows, err := s.db.DB.QueryContext(ctx, s.db.Rebind(
		`SELECT pattern, occurrences FROM run_patterns WHERE run_id = ? ORDER BY seq`), id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("querying patterns of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var pattern, data string
		if err := rows.Scan(&pattern, &data); err != nil {
			return Run{}, nil, fmt.Errorf("scanning pattern row: %w", err)
		}
		var occ motif.Occurrences
		if err := json.Unmarshal([]byte(data), &occ); err != nil {
			return Run{}, nil, fmt.Errorf("unmarshaling occurrences of %s: %w", pattern, err)
		}
		if occ == nil {
			occ = motif.Occurrences{}
		}
		result.Patterns[pattern] = occ
		result.Order = append(result.Order, pattern)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterating patterns of run %s: %w", id, err)
	}
	return run, result, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.DB.QueryContext(ctx, s.db.Rebind(
		`SELECT id, corpus_size, support, threshold, pattern_count, created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt int64
		)
		if err := rows.Scan(&run.ID, &run.CorpusSize, &run.Support, &run.Threshold, &run.PatternCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.CreatedAt = time.UnixMilli(createdAt).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
