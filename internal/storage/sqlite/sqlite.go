package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"multiping/internal/storage"
	"multiping/internal/storage/models"
	pkgerrors "multiping/pkg/errors"
)

// dbHandle is the common interface between *sql.DB and *sql.Tx.
type dbHandle interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DB implements the Storage interface using SQLite
type DB struct {
	db *sql.DB
}

var _ storage.Storage = (*DB)(nil)

// New opens (or creates) the database at dbPath and applies the schema
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The recorder checkpoints from one goroutine; a single connection
	// avoids SQLITE_BUSY between it and the CLI.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	storage := &DB{db: db}

	if err := runMigrations(storage); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) handle() dbHandle { return d.db }

// ─── Session operations ─────────────────────────────────────────────────────

const sessionColumns = `id, host, interval_ns, started_at, ended_at, sent, received, outcomes`

func (d *DB) CreateSession(ctx context.Context, session *models.Session) error {
	return createSession(ctx, d.handle(), session)
}

func createSession(ctx context.Context, h dbHandle, session *models.Session) error {
	query := `
		INSERT INTO sessions (host, interval_ns, started_at, ended_at, sent, received, outcomes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := h.ExecContext(ctx, query,
		session.Host, session.Interval.Nanoseconds(), session.StartedAt.UTC(), nullTime(session.EndedAt),
		session.Sent, session.Received, session.Outcomes,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	return nil
}

func (d *DB) UpdateSession(ctx context.Context, session *models.Session) error {
	return updateSession(ctx, d.handle(), session)
}

func updateSession(ctx context.Context, h dbHandle, session *models.Session) error {
	query := `
		UPDATE sessions
		SET ended_at = ?, sent = ?, received = ?, outcomes = ?
		WHERE id = ?
	`
	result, err := h.ExecContext(ctx, query,
		nullTime(session.EndedAt), session.Sent, session.Received, session.Outcomes, session.ID,
	)
	if err != nil {
		return &pkgerrors.SessionError{SessionID: session.ID, Host: session.Host, Err: err}
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &pkgerrors.SessionError{SessionID: session.ID, Host: session.Host, Err: pkgerrors.ErrSessionNotFound}
	}
	return nil
}

func (d *DB) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	return getSession(ctx, d.handle(), id)
}

func getSession(ctx context.Context, h dbHandle, id int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	session, err := scanSession(h.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &pkgerrors.SessionError{SessionID: id, Err: pkgerrors.ErrSessionNotFound}
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (d *DB) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]*models.Session, error) {
	return listSessions(ctx, d.handle(), filter)
}

func listSessions(ctx context.Context, h dbHandle, filter storage.SessionFilter) ([]*models.Session, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Host != "" {
		where = append(where, "host = ?")
		args = append(args, filter.Host)
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := h.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (d *DB) PruneSessions(ctx context.Context, keep int) (int64, error) {
	return pruneSessions(ctx, d.handle(), keep)
}

func pruneSessions(ctx context.Context, h dbHandle, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	query := `
		DELETE FROM sessions
		WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`
	result, err := h.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		session    models.Session
		intervalNS int64
		endedAt    sql.NullTime
	)
	err := row.Scan(
		&session.ID, &session.Host, &intervalNS, &session.StartedAt, &endedAt,
		&session.Sent, &session.Received, &session.Outcomes,
	)
	if err != nil {
		return nil, err
	}
	session.Interval = time.Duration(intervalNS)
	if endedAt.Valid {
		t := endedAt.Time
		session.EndedAt = &t
	}
	return &session, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
