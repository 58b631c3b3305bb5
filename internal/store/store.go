// Package store persists catalog runs in a SQLite database so records from
// several editions or reruns can be queried side by side.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hyperifyio/fleetcat/internal/doc"
)

// ErrRunNotFound is returned when a run id is not present in the database.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	input_sha256 TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	record_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	pos            INTEGER NOT NULL,
	country        TEXT NOT NULL,
	platform_type  TEXT NOT NULL,
	platform_class TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id, pos);
CREATE TABLE IF NOT EXISTS platform_names (
	record_id INTEGER NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	pos       INTEGER NOT NULL,
	name      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS radars (
	record_id INTEGER NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	pos       INTEGER NOT NULL,
	type      TEXT NOT NULL,
	name      TEXT NOT NULL,
	band      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
	record_id INTEGER NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	pos       INTEGER NOT NULL,
	ref       TEXT NOT NULL
);
`

// Run describes one pipeline execution.
type Run struct {
	ID          uuid.UUID
	Source      string
	InputSHA256 string
	CreatedAt   time.Time
	Records     int
}

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; keeps pragmas and in-memory databases on a single connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveRun writes the run row and all its records in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, records []doc.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, input_sha256, created_at, record_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.Source, run.InputSHA256, run.CreatedAt.UTC().Format(time.RFC3339Nano), len(records),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, r := range records {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO records (run_id, pos, country, platform_type, platform_class) VALUES (?, ?, ?, ?, ?)`,
			run.ID.String(), i, r.Country, r.PlatformType, r.PlatformClass,
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("record id: %w", err)
		}
		for j, n := range r.PlatformNames {
			if _, err := tx.ExecContext(ctx, `INSERT INTO platform_names (record_id, pos, name) VALUES (?, ?, ?)`, id, j, n); err != nil {
				return fmt.Errorf("insert name: %w", err)
			}
		}
		for j, rd := range r.Radars {
			if _, err := tx.ExecContext(ctx, `INSERT INTO radars (record_id, pos, type, name, band) VALUES (?, ?, ?, ?, ?)`, id, j, rd.Type, rd.Name, rd.Band); err != nil {
				return fmt.Errorf("insert radar: %w", err)
			}
		}
		for j, ref := range r.Images {
			if _, err := tx.ExecContext(ctx, `INSERT INTO images (record_id, pos, ref) VALUES (?, ?, ?)`, id, j, ref); err != nil {
				return fmt.Errorf("insert image: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, input_sha256, created_at, record_count FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r      Run
		id, ts string
	)
	if err := sc.Scan(&id, &r.Source, &r.InputSHA256, &ts, &r.Records); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", id, err)
	}
	r.ID = parsed
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return Run{}, fmt.Errorf("run %s created_at: %w", id, err)
	}
	return r, nil
}

// Records loads the records of one run in their original order.
func (s *Store) Records(ctx context.Context, runID uuid.UUID) ([]doc.Record, error) {
	if _, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, source, input_sha256, created_at, record_count FROM runs WHERE id = ?`, runID.String())); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, country, platform_type, platform_class FROM records WHERE run_id = ? ORDER BY pos`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	var (
		ids []int64
		out []doc.Record
	)
	for rows.Next() {
		var (
			id int64
			r  doc.Record
		)
		if err := rows.Scan(&id, &r.Country, &r.PlatformType, &r.PlatformClass); err != nil {
			rows.Close()
			return nil, err
		}
		r.PlatformNames = []string{}
		r.Radars = []doc.Radar{}
		r.Images = []string{}
		ids = append(ids, id)
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// child rows are read after the parent cursor is closed; the pool has a
	// single connection
	for i, id := range ids {
		if out[i].PlatformNames, err = s.strings(ctx, `SELECT name FROM platform_names WHERE record_id = ? ORDER BY pos`, id); err != nil {
			return nil, err
		}
		if out[i].Images, err = s.strings(ctx, `SELECT ref FROM images WHERE record_id = ? ORDER BY pos`, id); err != nil {
			return nil, err
		}
		if out[i].Radars, err = s.radars(ctx, id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) strings(ctx context.Context, query string, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) radars(ctx context.Context, id int64) ([]doc.Radar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, name, band FROM radars WHERE record_id = ? ORDER BY pos`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []doc.Radar{}
	for rows.Next() {
		var r doc.Radar
		if err := rows.Scan(&r.Type, &r.Name, &r.Band); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
