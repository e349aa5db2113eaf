// Package history records task events observed by ariactl in a local
// SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/warpdl/ariarpc/common"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
)

var (
	ErrNilStore = errors.New("nil store")
	ErrNotFound = errors.New("no events recorded for gid")
)

// now is replaced in tests.
var now = time.Now

// Event is one recorded observation of a task.
type Event struct {
	ID              string
	GID             string
	Kind            common.EventKind
	Status          ariarpc.StatusValue
	TotalLength     *int64
	CompletedLength *int64
	At              time.Time
}

// TaskStatus converts e back to the status it was recorded from.
func (e *Event) TaskStatus() *ariarpc.TaskStatus {
	return &ariarpc.TaskStatus{
		GID:             e.GID,
		Status:          e.Status,
		TotalLength:     e.TotalLength,
		CompletedLength: e.CompletedLength,
	}
}

// Store owns the history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. Call Init before
// use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the underlying SQLite file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init applies pragmas and the schema.
func (s *Store) Init(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrNilStore
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES ('schemaVersion','1');`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			gid TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('created','status','notify')),
			status TEXT NOT NULL DEFAULT '',
			total_length INTEGER,
			completed_length INTEGER,
			at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_gid ON events(gid, id);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Record stores a status observation of the given kind.
func (s *Store) Record(ctx context.Context, kind common.EventKind, ts *ariarpc.TaskStatus) (*Event, error) {
	if s == nil || s.db == nil {
		return nil, ErrNilStore
	}
	at := now()
	ev := &Event{
		ID:              newEventID(at),
		GID:             ts.GID,
		Kind:            kind,
		Status:          ts.Status,
		TotalLength:     ts.TotalLength,
		CompletedLength: ts.CompletedLength,
		At:              at,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events(id, gid, kind, status, total_length, completed_length, at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`, ev.ID, ev.GID, string(ev.Kind), string(ev.Status), ev.TotalLength, ev.CompletedLength, at.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("record %s event for %s: %w", kind, ts.GID, err)
	}
	return ev, nil
}

// RecordCreated stores the creation of gid.
func (s *Store) RecordCreated(ctx context.Context, gid string) (*Event, error) {
	return s.Record(ctx, common.EVENT_CREATED, &ariarpc.TaskStatus{GID: gid})
}

// Filter narrows List. A zero Limit returns every match.
type Filter struct {
	GID   string
	Limit int
}

// List returns matching events, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, ErrNilStore
	}
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT id, gid, kind, status, total_length, completed_length, at FROM events`)
	if f.GID != "" {
		sb.WriteString(` WHERE gid = ?`)
		args = append(args, f.GID)
	}
	sb.WriteString(` ORDER BY id DESC`)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}
	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// Latest returns the newest event for gid.
func (s *Store) Latest(ctx context.Context, gid string) (*Event, error) {
	events, err := s.List(ctx, Filter{GID: gid, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNotFound, gid)
	}
	return &events[0], nil
}

func scanEvent(rows *sql.Rows) (*Event, error) {
	var (
		ev        Event
		kind      string
		status    string
		total     sql.NullInt64
		completed sql.NullInt64
		at        int64
	)
	if err := rows.Scan(&ev.ID, &ev.GID, &kind, &status, &total, &completed, &at); err != nil {
		return nil, err
	}
	ev.Kind = common.EventKind(kind)
	ev.Status = ariarpc.StatusValue(status)
	if total.Valid {
		ev.TotalLength = &total.Int64
	}
	if completed.Valid {
		ev.CompletedLength = &completed.Int64
	}
	ev.At = time.UnixMilli(at)
	return &ev, nil
}
