package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"altimeter/pkg/db"
	"altimeter/pkg/sensor"
)

// Store composes the sub-interfaces. Consumers should depend on the
// specific sub-interface when possible.
type Store interface {
	StateStore
	SampleStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Store: GetState failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

// --- Samples ---

func (s *SQLiteStore) AppendSamples(ctx context.Context, session string, samples []sensor.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (timestamp_ns, pressure_mb, session) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, smp := range samples {
		if _, err := stmt.ExecContext(ctx, smp.Timestamp, smp.Pressure, session); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Samples(ctx context.Context, session string, limit int) ([]sensor.Sample, error) {
	query := `SELECT timestamp_ns, pressure_mb FROM samples WHERE session = ? ORDER BY timestamp_ns, id`
	args := []any{session}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sensor.Sample
	for rows.Next() {
		var smp sensor.Sample
		if err := rows.Scan(&smp.Timestamp, &smp.Pressure); err != nil {
			return nil, err
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, count(*), min(timestamp_ns), max(timestamp_ns)
		FROM samples GROUP BY session ORDER BY min(recorded_at)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var si SessionInfo
		if err := rows.Scan(&si.Name, &si.Count, &si.FirstNS, &si.LastNS); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ClearSamples(ctx context.Context, session string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM samples WHERE session = ?", session)
	return err
}
