package checkpoint

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite, with a runs log
// recording each drill invocation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path, configures WAL mode
// and applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "checkpoint: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "checkpoint: exec %s", pragma)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS checkpoints (
	polygon_id    TEXT PRIMARY KEY,
	last_observed DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	chunk_index INTEGER NOT NULL,
	processed   INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);
`

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return eris.Wrap(err, "checkpoint: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LastObserved(ctx context.Context, id string) (time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT last_observed FROM checkpoints WHERE polygon_id = ?`, id,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNoCheckpoint
	}
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "checkpoint: query %s", id)
	}
	return t.UTC(), nil
}

func (s *SQLiteStore) SetLastObserved(ctx context.Context, id string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (polygon_id, last_observed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(polygon_id) DO UPDATE SET
			last_observed = excluded.last_observed,
			updated_at = excluded.updated_at
	`, id, t.UTC(), time.Now().UTC())
	return eris.Wrapf(err, "checkpoint: upsert %s", id)
}

// Seed inserts a checkpoint only if the polygon has none. Used to register
// newly added polygons without disturbing drilled ones.
func (s *SQLiteStore) Seed(ctx context.Context, id string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (polygon_id, last_observed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(polygon_id) DO NOTHING
	`, id, t.UTC(), time.Now().UTC())
	return eris.Wrapf(err, "checkpoint: seed %s", id)
}

// Entry is one row of the checkpoint table.
type Entry struct {
	PolygonID    string
	LastObserved time.Time
	UpdatedAt    time.Time
}

// List returns all checkpoints ordered by polygon identifier.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT polygon_id, last_observed, updated_at FROM checkpoints ORDER BY polygon_id`)
	if err != nil {
		return nil, eris.Wrap(err, "checkpoint: list")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PolygonID, &e.LastObserved, &e.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "checkpoint: scan entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// BeginRun records the start of a drill invocation and returns its id.
func (s *SQLiteStore) BeginRun(ctx context.Context, chunkIndex int) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, chunk_index, started_at) VALUES (?, ?, ?)`,
		id, chunkIndex, time.Now().UTC())
	if err != nil {
		return "", eris.Wrap(err, "checkpoint: begin run")
	}
	return id, nil
}

// FinishRun records the per-polygon outcome counts of a drill invocation.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, processed, skipped int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET processed = ?, skipped = ?, finished_at = ?
		WHERE id = ?
	`, processed, skipped, time.Now().UTC(), runID)
	return eris.Wrap(err, "checkpoint: finish run")
}
