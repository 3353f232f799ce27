package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sqlStore is the shared implementation backing both SQLiteStore and
// MySQLStore: the two differ only in driver name and DDL dialect.
type sqlStore struct {
	db *sql.DB
}

func openSQLStore(driver, dsn, solutionsDDL, checkpointsDDL string) (*sqlStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}
	if _, err := db.Exec(solutionsDDL); err != nil {
		return nil, fmt.Errorf("store: create solutions table: %w", err)
	}
	if _, err := db.Exec(checkpointsDDL); err != nil {
		return nil, fmt.Errorf("store: create checkpoints table: %w", err)
	}
	return &sqlStore{db: db}, nil
}

func (s *sqlStore) SaveSolution(ctx context.Context, sol SolutionRecord) error {
	payload, err := encodeFloats(sol.Payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO search_solutions (run_id, payload, objective, owner_id) VALUES (?, ?, ?, ?)`,
		sol.RunID, payload, sol.Objective, sol.OwnerID)
	return err
}

func (s *sqlStore) BestSolutions(ctx context.Context, runID string, limit int) ([]SolutionRecord, error) {
	query := `SELECT payload, objective, owner_id FROM search_solutions WHERE run_id = ? ORDER BY objective ASC`
	args := []any{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SolutionRecord
	for rows.Next() {
		var payload string
		rec := SolutionRecord{RunID: runID}
		if err := rows.Scan(&payload, &rec.Objective, &rec.OwnerID); err != nil {
			return nil, err
		}
		rec.Payload, err = decodeFloats(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqlStore) SaveCheckpoint(ctx context.Context, cp Checkpoint) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_checkpoints (run_id, step, incumbent, saved_at) VALUES (?, ?, ?, ?)`,
		cp.RunID, cp.Step, cp.Incumbent, cp.SavedAt)
	return err
}

func (s *sqlStore) LoadCheckpoint(ctx context.Context, runID string) (Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT step, incumbent, saved_at FROM search_checkpoints WHERE run_id = ? ORDER BY step DESC LIMIT 1`,
		runID)

	cp := Checkpoint{RunID: runID}
	if err := row.Scan(&cp.Step, &cp.Incumbent, &cp.SavedAt); err != nil {
		if err == sql.ErrNoRows {
			return Checkpoint{}, ErrNotFound
		}
		return Checkpoint{}, err
	}
	return cp, nil
}

func (s *sqlStore) Close() error { return s.db.Close() }

func encodeFloats(v []float64) (string, error) {
	buf := make([]byte, 0, len(v)*16)
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = fmt.Appendf(buf, "%g", f)
	}
	return string(buf), nil
}

func decodeFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	var out []float64
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			var f float64
			if _, err := fmt.Sscanf(s[start:i], "%g", &f); err != nil {
				return nil, fmt.Errorf("store: decode payload: %w", err)
			}
			out = append(out, f)
			start = i + 1
		}
	}
	return out, nil
}
