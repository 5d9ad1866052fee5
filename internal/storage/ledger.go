package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"masterly/internal/core/model"
)

var (
	// ErrNotFound is returned when a session id does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrConstraintViolation is returned when a write would produce an
	// inconsistent row, such as an end time before the start time.
	ErrConstraintViolation = errors.New("session constraint violation")
)

const timeLayout = time.RFC3339Nano

// Ledger is the durable store of completed practice sessions.
type Ledger struct {
	db   *sql.DB
	path string
}

// OpenLedger opens (and if needed creates) the session database at
// path.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	ledger := &Ledger{db: db, path: path}
	if err := ledger.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

func (ledger *Ledger) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  skill_name TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  duration_minutes REAL NOT NULL DEFAULT 0,
  practiced TEXT,
  learned TEXT,
  next_focus TEXT,
  notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time);
`
	if _, err := ledger.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (ledger *Ledger) Close() error {
	return ledger.db.Close()
}

// Path returns the database file location.
func (ledger *Ledger) Path() string {
	return ledger.path
}

// Create persists a completed session. The id is assigned here when the
// caller supplies none; a caller-provided id (the tracker's in-memory
// session id) is kept so that live tick events stay correlatable with
// the stored row. The write is atomic: the row appears fully or not at
// all.
func (ledger *Ledger) Create(ctx context.Context, session model.Session) (model.Session, error) {
	if err := validateTimes(session.StartTime, session.EndTime, session.DurationMinutes); err != nil {
		return model.Session{}, err
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	const stmt = `
INSERT INTO sessions (id, skill_name, start_time, end_time, duration_minutes, practiced, learned, next_focus, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := ledger.db.ExecContext(ctx, stmt,
		session.ID,
		session.SkillName,
		session.StartTime.UTC().Format(timeLayout),
		session.EndTime.UTC().Format(timeLayout),
		session.DurationMinutes,
		nullable(session.Reflection.Practiced),
		nullable(session.Reflection.Learned),
		nullable(session.Reflection.NextFocus),
		nullable(session.Reflection.Notes),
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// Get returns the session with the given id.
func (ledger *Ledger) Get(ctx context.Context, id string) (model.Session, error) {
	row := ledger.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	return session, err
}

// Update applies a patch to a persisted session. Editing either
// timestamp recomputes the duration from the new interval; an end time
// before the start time is rejected, not clamped. The read-modify-write
// runs in one transaction so concurrent edits of the same id cannot
// interleave into a corrupted row.
func (ledger *Ledger) Update(ctx context.Context, id string, patch model.SessionPatch) (model.Session, error) {
	tx, err := ledger.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Session{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, err
	}

	timesEdited := patch.StartTime != nil || patch.EndTime != nil
	if patch.StartTime != nil {
		session.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		session.EndTime = *patch.EndTime
	}
	if timesEdited {
		session.DurationMinutes = session.EndTime.Sub(session.StartTime).Minutes()
	}
	if patch.Practiced != nil {
		session.Reflection.Practiced = *patch.Practiced
	}
	if patch.Learned != nil {
		session.Reflection.Learned = *patch.Learned
	}
	if patch.NextFocus != nil {
		session.Reflection.NextFocus = *patch.NextFocus
	}
	if patch.Notes != nil {
		session.Reflection.Notes = *patch.Notes
	}

	if err := validateTimes(session.StartTime, session.EndTime, session.DurationMinutes); err != nil {
		return model.Session{}, err
	}

	const stmt = `
UPDATE sessions
SET start_time = ?, end_time = ?, duration_minutes = ?, practiced = ?, learned = ?, next_focus = ?, notes = ?
WHERE id = ?;
`
	_, err = tx.ExecContext(ctx, stmt,
		session.StartTime.UTC().Format(timeLayout),
		session.EndTime.UTC().Format(timeLayout),
		session.DurationMinutes,
		nullable(session.Reflection.Practiced),
		nullable(session.Reflection.Learned),
		nullable(session.Reflection.NextFocus),
		nullable(session.Reflection.Notes),
		id,
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("update session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Session{}, fmt.Errorf("commit update: %w", err)
	}
	return session, nil
}

// Delete removes a session from the ledger.
func (ledger *Ledger) Delete(ctx context.Context, id string) error {
	result, err := ledger.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns sessions ordered most recent first.
func (ledger *Ledger) List(ctx context.Context, limit, offset int) ([]model.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := ledger.db.QueryContext(ctx,
		selectColumns+` ORDER BY start_time DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// All returns the full session history in chronological order, as the
// analytics engine consumes it.
func (ledger *Ledger) All(ctx context.Context) ([]model.Session, error) {
	rows, err := ledger.db.QueryContext(ctx, selectColumns+` ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// BackupTo copies the database file into dir under a timestamped name
// and returns the snapshot path.
func (ledger *Ledger) BackupTo(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	target := filepath.Join(dir, fmt.Sprintf("masterly-backup-%s.sqlite", time.Now().Format("20060102T150405")))

	source, err := os.Open(ledger.path)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer source.Close()

	snapshot, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	defer snapshot.Close()

	if _, err := io.Copy(snapshot, source); err != nil {
		return "", fmt.Errorf("copy database: %w", err)
	}
	return target, nil
}

const selectColumns = `
SELECT id, skill_name, start_time, end_time, duration_minutes, practiced, learned, next_focus, notes
FROM sessions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.Session, error) {
	var (
		session    model.Session
		start, end string
		practiced  sql.NullString
		learned    sql.NullString
		nextFocus  sql.NullString
		notes      sql.NullString
	)
	err := row.Scan(&session.ID, &session.SkillName, &start, &end,
		&session.DurationMinutes, &practiced, &learned, &nextFocus, &notes)
	if err != nil {
		return model.Session{}, err
	}

	if session.StartTime, err = time.Parse(timeLayout, start); err != nil {
		return model.Session{}, fmt.Errorf("parse start time: %w", err)
	}
	if session.EndTime, err = time.Parse(timeLayout, end); err != nil {
		return model.Session{}, fmt.Errorf("parse end time: %w", err)
	}
	session.Reflection = model.Reflection{
		Practiced: practiced.String,
		Learned:   learned.String,
		NextFocus: nextFocus.String,
		Notes:     notes.String,
	}
	return session, nil
}

func collectSessions(rows *sql.Rows) ([]model.Session, error) {
	var sessions []model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return sessions, nil
}

func validateTimes(start, end time.Time, durationMinutes float64) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end time before start time", ErrConstraintViolation)
	}
	if durationMinutes < 0 {
		return fmt.Errorf("%w: negative duration", ErrConstraintViolation)
	}
	return nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
