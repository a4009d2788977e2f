// Package storage persists generated tracker entries into Postgres for
// querying outside the published page.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"TrackerPipeline/internal/domain"
	"TrackerPipeline/internal/ports"
)

const createArchiveTable = `
CREATE TABLE IF NOT EXISTS tracker_entries (
    entry_id     TEXT PRIMARY KEY,
    category     TEXT NOT NULL,
    title        TEXT NOT NULL,
    threat_level TEXT NOT NULL,
    administration TEXT NOT NULL DEFAULT '',
    entry_date   TEXT NOT NULL,
    run_date     TEXT NOT NULL,
    affected     TEXT[] NOT NULL DEFAULT '{}',
    payload      JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresArchive mirrors every appended entry into a relational table.
// The archive is optional; the published JSON document stays the source
// of truth.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.EntryArchive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB and ensures the table exists.
func NewPostgresArchive(ctx context.Context, db *sql.DB) (*PostgresArchive, error) {
	if _, err := db.ExecContext(ctx, createArchiveTable); err != nil {
		return nil, fmt.Errorf("create archive table: %w", err)
	}
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// SaveEntries upserts one row per entry, keyed by the entry's tracker ID.
func (a *PostgresArchive) SaveEntries(ctx context.Context, runDate string, byCategory map[string][]domain.Entry) error {
	if a.db == nil {
		return nil
	}

	for category, entries := range byCategory {
		for _, entry := range entries {
			payload, err := entry.MarshalPayload()
			if err != nil {
				return fmt.Errorf("marshal entry %s: %w", entry.ID(), err)
			}

			query, args, err := a.builder.
				Insert("tracker_entries").
				Columns("entry_id", "category", "title", "threat_level", "administration", "entry_date", "run_date", "affected", "payload").
				Values(
					entry.ID(),
					category,
					entry.String("t"),
					entry.String("L"),
					entry.String("a"),
					entry.String("d"),
					runDate,
					pq.StringArray(entry.Strings("A")),
					payload,
				).
				Suffix(`ON CONFLICT (entry_id) DO UPDATE
                    SET title = EXCLUDED.title,
                        threat_level = EXCLUDED.threat_level,
                        affected = EXCLUDED.affected,
                        payload = EXCLUDED.payload,
                        updated_at = NOW()`).
				ToSql()
			if err != nil {
				return fmt.Errorf("build upsert for %s: %w", entry.ID(), err)
			}

			if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert entry %s: %w", entry.ID(), err)
			}
		}
	}
	return nil
}
