// Package storage persists the client's own state in SQLite: login sessions and
// the ledger of reminder notices already published. Financial records are never
// stored here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"financas/internal/core"
	"financas/internal/session"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ session.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s session.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, user_id, email, name, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			email = excluded.email,
			name = excluded.name,
			expires_at = excluded.expires_at`,
		s.ID, s.Token, s.UserID, s.Email, s.Name, s.CreatedAt.Unix(), s.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	slog.InfoContext(ctx, "Session saved", "component", "storage", "session_id", s.ID, "email", s.Email)
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (session.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, email, name, created_at, expires_at
		FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, session.ErrNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]session.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, token, user_id, email, name, created_at, expires_at
		FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (session.Session, error) {
	var (
		s                  session.Session
		created, expiresAt int64
	)
	if err := row.Scan(&s.ID, &s.Token, &s.UserID, &s.Email, &s.Name, &created, &expiresAt); err != nil {
		return session.Session{}, err
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return s, nil
}

// Notice identifies one published reminder announcement.
type Notice struct {
	ReminderID int64
	Urgency    core.Urgency
	SessionID  string
	DueDate    core.Date
}

// RecordNotice stores the notice unless the same reminder was already announced
// with the same urgency. It reports whether the row is new.
func (r *SQLiteRepository) RecordNotice(ctx context.Context, n Notice, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_notices (reminder_id, urgency, session_id, due_date, notified_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(reminder_id, urgency) DO NOTHING`,
		n.ReminderID, string(n.Urgency), n.SessionID, n.DueDate.ISO(), at.Unix())
	if err != nil {
		return false, fmt.Errorf("record notice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record notice: %w", err)
	}
	return affected == 1, nil
}

// ForgetNotice removes a notice so the next scan announces it again.
func (r *SQLiteRepository) ForgetNotice(ctx context.Context, reminderID int64, urgency core.Urgency) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reminder_notices WHERE reminder_id = ? AND urgency = ?`, reminderID, string(urgency)); err != nil {
		return fmt.Errorf("forget notice: %w", err)
	}
	return nil
}

// Announced reports whether a due-soon or overdue notice for the reminder is
// still in the ledger.
func (r *SQLiteRepository) Announced(ctx context.Context, reminderID int64) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM reminder_notices
			WHERE reminder_id = ? AND urgency IN ('dueSoon', 'overdue'))`,
		reminderID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("announced: %w", err)
	}
	return found, nil
}

// PurgeNotices drops ledger rows older than before.
func (r *SQLiteRepository) PurgeNotices(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminder_notices WHERE notified_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge notices: %w", err)
	}
	return res.RowsAffected()
}
