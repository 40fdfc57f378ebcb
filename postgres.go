package attune

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// Connect opens a Postgres connection pool for the stores.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// PgStore implements Store using soy for persistence.
type PgStore struct {
	entries  *soy.Soy[Entry]
	insights *soy.Soy[Insight]
	db       *sqlx.DB
}

// NewPgStore creates a soy-backed Store implementation.
func NewPgStore(db *sqlx.DB) (*PgStore, error) {
	renderer := postgres.New()

	entries, err := soy.New[Entry](db, "entries", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize entries table: %w", err)
	}

	insights, err := soy.New[Insight](db, "insights", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize insights table: %w", err)
	}

	return &PgStore{
		entries:  entries,
		insights: insights,
		db:       db,
	}, nil
}

// CreateEntry persists a new entry and returns it with ID populated.
func (s *PgStore) CreateEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	inserted, err := s.entries.Insert().Exec(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	return inserted, nil
}

// GetEntry loads an entry by ID.
func (s *PgStore) GetEntry(ctx context.Context, id string) (*Entry, error) {
	entry, err := s.entries.Select().
		Where("id", "=", "id").
		Exec(ctx, map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// RecentEntries loads a user's entries created at or after since, newest first.
func (s *PgStore) RecentEntries(ctx context.Context, userID string, since time.Time) ([]*Entry, error) {
	entries, err := s.entries.Query().
		Where("user_id", "=", "user_id").
		Where("created_at", ">=", "since").
		OrderBy("created_at", "desc").
		Exec(ctx, map[string]any{"user_id": userID, "since": since})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent entries: %w", err)
	}
	return entries, nil
}

// CreateInsight persists a period insight and returns it with ID populated.
func (s *PgStore) CreateInsight(ctx context.Context, insight *Insight) (*Insight, error) {
	inserted, err := s.insights.Insert().Exec(ctx, insight)
	if err != nil {
		return nil, fmt.Errorf("failed to insert insight: %w", err)
	}
	return inserted, nil
}

// BumpEngagement upserts the user's engagement counters. Streaks are derived
// from entry timestamps at read time, so only the total and last-active
// columns live here.
func (s *PgStore) BumpEngagement(ctx context.Context, userID string, at time.Time) error {
	const q = `
		INSERT INTO engagement (user_id, total_entries, last_active_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET total_entries = engagement.total_entries + 1,
		    last_active_at = EXCLUDED.last_active_at`
	if _, err := s.db.ExecContext(ctx, q, userID, at); err != nil {
		return fmt.Errorf("failed to bump engagement: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *PgStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PgStore)(nil)

// PgHealthStore implements HealthStore using soy for persistence.
type PgHealthStore struct {
	records *soy.Soy[HealthRecord]
}

// NewPgHealthStore creates a soy-backed HealthStore implementation.
func NewPgHealthStore(db *sqlx.DB) (*PgHealthStore, error) {
	records, err := soy.New[HealthRecord](db, "health_records", postgres.New())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize health_records table: %w", err)
	}
	return &PgHealthStore{records: records}, nil
}

// Latest returns the most recent health record for the user, or (nil, nil)
// when none exists.
func (s *PgHealthStore) Latest(ctx context.Context, userID string) (*HealthRecord, error) {
	records, err := s.records.Query().
		Where("user_id", "=", "user_id").
		OrderBy("date", "desc").
		Limit(1).
		Exec(ctx, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest health record: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Range returns health records for the user within [from, to], newest first.
func (s *PgHealthStore) Range(ctx context.Context, userID string, from, to time.Time) ([]*HealthRecord, error) {
	records, err := s.records.Query().
		Where("user_id", "=", "user_id").
		Where("date", ">=", "from").
		Where("date", "<=", "to").
		OrderBy("date", "desc").
		Exec(ctx, map[string]any{"user_id": userID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("failed to get health records: %w", err)
	}
	return records, nil
}

var _ HealthStore = (*PgHealthStore)(nil)
