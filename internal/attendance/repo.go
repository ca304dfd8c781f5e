package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance sessions and marks in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// lockKey derives a stable advisory-lock key for a classroom so concurrent
// opens for the same classroom serialize.
func lockKey(classroomID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("attendance:" + classroomID))
	return int64(h.Sum64())
}

// CreateSession inserts a session unless one was already started for the
// classroom within the trailing dedup window. The check and insert run in
// one transaction under a per-classroom advisory lock, so two concurrent
// opens cannot both pass the check.
func (r *Repository) CreateSession(ctx context.Context, s Session, dedupWindow time.Duration) (Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey(s.ClassroomID)); err != nil {
		return Session{}, fmt.Errorf("advisory lock: %w", err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_sessions
			WHERE classroom_id = $1 AND start_time > $2
		)
	`, s.ClassroomID, s.StartTime.Add(-dedupWindow)).Scan(&exists)
	if err != nil {
		return Session{}, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return Session{}, ErrDuplicateSession
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_sessions (id, classroom_id, started_by, start_time, duration_minutes, latitude, longitude)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, s.ID, s.ClassroomID, s.StartedBy, s.StartTime, s.DurationMinutes, s.Anchor.Latitude, s.Anchor.Longitude)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

// LatestSession resolves the most recently started session with
// start_time <= now, with its marks loaded. It does not skip past an
// expired latest session.
func (r *Repository) LatestSession(ctx context.Context, classroomID string, now time.Time) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, classroom_id, started_by, start_time, duration_minutes, latitude, longitude
		FROM attendance_sessions
		WHERE classroom_id = $1 AND start_time <= $2
		ORDER BY start_time DESC
		LIMIT 1
	`, classroomID, now)

	var s Session
	err := row.Scan(&s.ID, &s.ClassroomID, &s.StartedBy, &s.StartTime, &s.DurationMinutes, &s.Anchor.Latitude, &s.Anchor.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoActiveSession
	}
	if err != nil {
		return Session{}, err
	}

	s.Marks, err = r.marksFor(ctx, s.ID)
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// AppendMark records a student's mark. The primary key on
// (session_id, student_id) makes concurrent duplicate marks lose the race.
func (r *Repository) AppendMark(ctx context.Context, sessionID string, m Mark) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_marks (session_id, student_id, marked_at, latitude, longitude)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (session_id, student_id) DO NOTHING
	`, sessionID, m.StudentID, m.MarkedAt, m.Location.Latitude, m.Location.Longitude)
	if err != nil {
		return fmt.Errorf("insert mark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyMarked
	}
	return nil
}

// ListSessions returns all sessions for a classroom, newest first, with
// their marks.
func (r *Repository) ListSessions(ctx context.Context, classroomID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, classroom_id, started_by, start_time, duration_minutes, latitude, longitude
		FROM attendance_sessions
		WHERE classroom_id = $1
		ORDER BY start_time DESC
	`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	index := map[string]int{}
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.ClassroomID, &s.StartedBy, &s.StartTime, &s.DurationMinutes, &s.Anchor.Latitude, &s.Anchor.Longitude); err != nil {
			return nil, err
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	markRows, err := r.db.QueryContext(ctx, `
		SELECT m.session_id, m.student_id, m.marked_at, m.latitude, m.longitude
		FROM attendance_marks m
		JOIN attendance_sessions s ON s.id = m.session_id
		WHERE s.classroom_id = $1
		ORDER BY m.marked_at
	`, classroomID)
	if err != nil {
		return nil, err
	}
	defer markRows.Close()

	for markRows.Next() {
		var sessionID string
		var m Mark
		if err := markRows.Scan(&sessionID, &m.StudentID, &m.MarkedAt, &m.Location.Latitude, &m.Location.Longitude); err != nil {
			return nil, err
		}
		if i, ok := index[sessionID]; ok {
			sessions[i].Marks = append(sessions[i].Marks, m)
		}
	}
	return sessions, markRows.Err()
}

// CountSessions returns how many sessions were ever opened for a classroom.
func (r *Repository) CountSessions(ctx context.Context, classroomID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_sessions WHERE classroom_id = $1`, classroomID).Scan(&n)
	return n, err
}

// CountAttended returns how many of a classroom's sessions contain a mark
// for the student.
func (r *Repository) CountAttended(ctx context.Context, classroomID, studentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM attendance_marks m
		JOIN attendance_sessions s ON s.id = m.session_id
		WHERE s.classroom_id = $1 AND m.student_id = $2
	`, classroomID, studentID).Scan(&n)
	return n, err
}

func (r *Repository) marksFor(ctx context.Context, sessionID string) ([]Mark, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id, marked_at, latitude, longitude
		FROM attendance_marks
		WHERE session_id = $1
		ORDER BY marked_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []Mark
	for rows.Next() {
		var m Mark
		if err := rows.Scan(&m.StudentID, &m.MarkedAt, &m.Location.Latitude, &m.Location.Longitude); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}
