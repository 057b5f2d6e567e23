//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/demmel/life-plus-plus/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteAvailable = true

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at_utc, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at_utc = excluded.created_at_utc,
			payload = excluded.payload
	`, run.ID, run.CreatedAtUTC, payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (model.RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM runs ORDER BY created_at_utc DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		run, err := DecodeRun(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) AppendComparisons(ctx context.Context, runID string, records []model.ComparisonRecord) error {
	return s.appendRows(ctx, `INSERT INTO comparisons (run_id, payload) VALUES (?, ?)`, runID, len(records), func(i int) ([]byte, error) {
		return EncodeComparison(records[i])
	})
}

func (s *SQLiteStore) GetComparisons(ctx context.Context, runID string) ([]model.ComparisonRecord, bool, error) {
	var out []model.ComparisonRecord
	found, err := s.scanRows(ctx, `SELECT payload FROM comparisons WHERE run_id = ? ORDER BY seq`, runID, func(payload []byte) error {
		record, err := DecodeComparison(payload)
		if err != nil {
			return fmt.Errorf("decode comparison %s: %w", runID, err)
		}
		out = append(out, record)
		return nil
	})
	return out, found, err
}

func (s *SQLiteStore) AppendGeneration(ctx context.Context, runID string, record model.GenerationRecord) error {
	return s.appendRows(ctx, `INSERT INTO generations (run_id, payload) VALUES (?, ?)`, runID, 1, func(int) ([]byte, error) {
		return EncodeGeneration(record)
	})
}

func (s *SQLiteStore) GetGenerations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	var out []model.GenerationRecord
	found, err := s.scanRows(ctx, `SELECT payload FROM generations WHERE run_id = ? ORDER BY seq`, runID, func(payload []byte) error {
		record, err := DecodeGeneration(payload)
		if err != nil {
			return fmt.Errorf("decode generation %s: %w", runID, err)
		}
		out = append(out, record)
		return nil
	})
	return out, found, err
}

func (s *SQLiteStore) AppendLineage(ctx context.Context, runID string, records []model.LineageRecord) error {
	return s.appendRows(ctx, `INSERT INTO lineage (run_id, payload) VALUES (?, ?)`, runID, len(records), func(i int) ([]byte, error) {
		return EncodeLineage(records[i])
	})
}

func (s *SQLiteStore) GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error) {
	var out []model.LineageRecord
	found, err := s.scanRows(ctx, `SELECT payload FROM lineage WHERE run_id = ? ORDER BY seq`, runID, func(payload []byte) error {
		record, err := DecodeLineage(payload)
		if err != nil {
			return fmt.Errorf("decode lineage %s: %w", runID, err)
		}
		out = append(out, record)
		return nil
	})
	return out, found, err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// appendRows inserts count payloads for runID in one transaction.
func (s *SQLiteStore) appendRows(ctx context.Context, query, runID string, count int, encode func(i int) ([]byte, error)) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := 0; i < count; i++ {
		payload, err := encode(i)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, runID, payload); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) scanRows(ctx context.Context, query, runID string, decode func(payload []byte) error) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}

	rows, err := db.QueryContext(ctx, query, runID)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return false, err
		}
		if err := decode(payload); err != nil {
			return false, err
		}
		found = true
	}
	return found, rows.Err()
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS comparisons (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS lineage (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS comparisons_run ON comparisons (run_id, seq);
		CREATE INDEX IF NOT EXISTS generations_run ON generations (run_id, seq);
		CREATE INDEX IF NOT EXISTS lineage_run ON lineage (run_id, seq);
	`)
	return err
}
