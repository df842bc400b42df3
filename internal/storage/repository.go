package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	createStimuliSQL = `CREATE TABLE IF NOT EXISTS stimuli (
        id              UUID PRIMARY KEY,
        kinetics        TEXT NOT NULL,
        comment         TEXT NOT NULL,
        parameters      JSONB NOT NULL,
        sampling        TEXT NOT NULL,
        delay_ms        NUMERIC NOT NULL,
        samples         INTEGER NOT NULL,
        duration_ms     NUMERIC NOT NULL,
        peak_time_ms    NUMERIC NOT NULL,
        peak_current_pa NUMERIC NOT NULL,
        atf_path        TEXT NOT NULL,
        plot_path       TEXT,
        created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
    );`

	insertStimulusSQL = `INSERT INTO stimuli (
        id,
        kinetics,
        comment,
        parameters,
        sampling,
        delay_ms,
        samples,
        duration_ms,
        peak_time_ms,
        peak_current_pa,
        atf_path,
        plot_path
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
    )
    RETURNING created_at;`

	listRecentStimuliSQL = `SELECT
        id,
        kinetics,
        comment,
        parameters,
        sampling,
        delay_ms::text,
        samples,
        duration_ms::text,
        peak_time_ms::text,
        peak_current_pa::text,
        atf_path,
        plot_path,
        created_at
    FROM stimuli
    ORDER BY created_at DESC
    LIMIT $1;`

	countStimuliSQL = `SELECT COUNT(*) FROM stimuli;`
)

// StimulusStore defines operations for the stimulus catalog.
type StimulusStore interface {
	EnsureSchema(ctx context.Context) error
	InsertStimulus(ctx context.Context, rec StimulusRecord) (StimulusRecord, error)
	ListRecentStimuli(ctx context.Context, limit int) ([]StimulusRecord, error)
	CountStimuli(ctx context.Context) (int64, error)
}

// Store is the PostgreSQL-backed stimulus catalog.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the stimuli table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, createStimuliSQL); execErr != nil {
		return fmt.Errorf("ensure schema: %w", execErr)
	}
	return nil
}

// InsertStimulus persists a catalog entry, assigning an id when unset.
func (s *Store) InsertStimulus(ctx context.Context, rec StimulusRecord) (StimulusRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return StimulusRecord{}, err
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	params := rec.Parameters
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	var plotPath interface{}
	if rec.PlotPath != nil {
		plotPath = *rec.PlotPath
	}

	row := pool.QueryRow(ctx, insertStimulusSQL,
		rec.ID,
		rec.Kinetics,
		rec.Comment,
		[]byte(params),
		rec.Sampling,
		rec.DelayMS.String(),
		rec.Samples,
		rec.DurationMS.String(),
		rec.PeakTimeMS.String(),
		rec.PeakCurrent.String(),
		rec.ATFPath,
		plotPath,
	)
	if scanErr := row.Scan(&rec.CreatedAt); scanErr != nil {
		return StimulusRecord{}, fmt.Errorf("insert stimulus: %w", scanErr)
	}
	return rec, nil
}

// ListRecentStimuli lists the newest catalog entries first.
func (s *Store) ListRecentStimuli(ctx context.Context, limit int) ([]StimulusRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentStimuliSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent stimuli: %w", queryErr)
	}
	defer rows.Close()

	records := make([]StimulusRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanStimulus(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountStimuli counts catalog entries.
func (s *Store) CountStimuli(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countStimuliSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count stimuli: %w", scanErr)
	}
	return count, nil
}

func scanStimulus(rows pgx.Rows) (StimulusRecord, error) {
	var (
		rec         StimulusRecord
		params      []byte
		delayStr    string
		durationStr string
		peakTimeStr string
		peakStr     string
		plotPath    sql.NullString
		createdAt   time.Time
	)

	if err := rows.Scan(
		&rec.ID,
		&rec.Kinetics,
		&rec.Comment,
		&params,
		&rec.Sampling,
		&delayStr,
		&rec.Samples,
		&durationStr,
		&peakTimeStr,
		&peakStr,
		&rec.ATFPath,
		&plotPath,
		&createdAt,
	); err != nil {
		return StimulusRecord{}, err
	}

	var err error
	if rec.DelayMS, err = decimal.NewFromString(delayStr); err != nil {
		return StimulusRecord{}, fmt.Errorf("parse delay_ms: %w", err)
	}
	if rec.DurationMS, err = decimal.NewFromString(durationStr); err != nil {
		return StimulusRecord{}, fmt.Errorf("parse duration_ms: %w", err)
	}
	if rec.PeakTimeMS, err = decimal.NewFromString(peakTimeStr); err != nil {
		return StimulusRecord{}, fmt.Errorf("parse peak_time_ms: %w", err)
	}
	if rec.PeakCurrent, err = decimal.NewFromString(peakStr); err != nil {
		return StimulusRecord{}, fmt.Errorf("parse peak_current_pa: %w", err)
	}

	rec.Parameters = json.RawMessage(params)
	rec.CreatedAt = createdAt
	if plotPath.Valid {
		path := plotPath.String
		rec.PlotPath = &path
	}
	return rec, nil
}

var _ StimulusStore = (*Store)(nil)
