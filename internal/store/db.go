package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// EnsureSchema creates the tables the service needs if they do not exist.
// Indexes back the hot queries: latest session per classroom and the
// one-mark-per-student constraint.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			login_id      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'student',
			profile_pic   TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS classrooms (
			id          UUID PRIMARY KEY,
			code        TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by  UUID NOT NULL REFERENCES users(id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS classroom_students (
			classroom_id UUID NOT NULL REFERENCES classrooms(id) ON DELETE CASCADE,
			student_id   UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			joined_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (classroom_id, student_id)
		);

		CREATE TABLE IF NOT EXISTS communities (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			teacher_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_active  BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS community_members (
			community_id UUID NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
			user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			joined_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (community_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS community_messages (
			id           UUID PRIMARY KEY,
			community_id UUID NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
			author_id    UUID NOT NULL REFERENCES users(id),
			body         TEXT NOT NULL DEFAULT '',
			file_url     TEXT,
			file_name    TEXT,
			file_type    TEXT,
			file_size    BIGINT,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS community_messages_community_idx
			ON community_messages (community_id, created_at);

		CREATE TABLE IF NOT EXISTS reminders (
			id          UUID PRIMARY KEY,
			user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			due_at      TIMESTAMPTZ NOT NULL,
			priority    TEXT NOT NULL DEFAULT 'low',
			color       TEXT NOT NULL DEFAULT '#3B82F6',
			repeat      TEXT NOT NULL DEFAULT 'none',
			notified    BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS reminders_due_idx ON reminders (due_at, notified);

		CREATE TABLE IF NOT EXISTS attendance_sessions (
			id               UUID PRIMARY KEY,
			classroom_id     UUID NOT NULL REFERENCES classrooms(id) ON DELETE CASCADE,
			started_by       UUID NOT NULL REFERENCES users(id),
			start_time       TIMESTAMPTZ NOT NULL,
			duration_minutes INT NOT NULL DEFAULT 2,
			latitude         DOUBLE PRECISION NOT NULL,
			longitude        DOUBLE PRECISION NOT NULL
		);
		CREATE INDEX IF NOT EXISTS attendance_sessions_classroom_idx
			ON attendance_sessions (classroom_id, start_time DESC);

		CREATE TABLE IF NOT EXISTS attendance_marks (
			session_id UUID NOT NULL REFERENCES attendance_sessions(id) ON DELETE CASCADE,
			student_id UUID NOT NULL REFERENCES users(id),
			marked_at  TIMESTAMPTZ NOT NULL,
			latitude   DOUBLE PRECISION NOT NULL,
			longitude  DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (session_id, student_id)
		);
	`)
	return err
}
