package reminder

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists reminders in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const reminderCols = `id, user_id, title, description, due_at, priority, color, repeat, notified, created_at`

// Insert writes a new reminder.
func (r *Repository) Insert(ctx context.Context, rem Reminder) (Reminder, error) {
	if rem.ID == "" {
		rem.ID = uuid.NewString()
	}
	if rem.CreatedAt.IsZero() {
		rem.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, rem.ID, rem.UserID, rem.Title, rem.Description, rem.DueAt, rem.Priority, rem.Color, rem.Repeat, rem.Notified, rem.CreatedAt)
	if err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

// FindForUser returns a reminder scoped to its owner.
func (r *Repository) FindForUser(ctx context.Context, id, userID string) (Reminder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reminderCols+` FROM reminders WHERE id = $1 AND user_id = $2
	`, id, userID)
	rem, err := scanReminder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Reminder{}, ErrNotFound
	}
	return rem, err
}

// ListForUser returns the user's reminders ordered by due time.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]Reminder, error) {
	return r.list(ctx, `
		SELECT `+reminderCols+` FROM reminders WHERE user_id = $1 ORDER BY due_at
	`, userID)
}

// Update replaces the editable fields.
func (r *Repository) Update(ctx context.Context, rem Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET title = $2, description = $3, due_at = $4, priority = $5, color = $6, repeat = $7, notified = $8
		WHERE id = $1
	`, rem.ID, rem.Title, rem.Description, rem.DueAt, rem.Priority, rem.Color, rem.Repeat, rem.Notified)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a reminder scoped to its owner.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDue returns unnotified reminders due at or before the given time.
func (r *Repository) ListDue(ctx context.Context, before time.Time) ([]Reminder, error) {
	return r.list(ctx, `
		SELECT `+reminderCols+` FROM reminders
		WHERE due_at <= $1 AND notified = FALSE
		ORDER BY due_at
	`, before)
}

// SetNotified flips the notified flag.
func (r *Repository) SetNotified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET notified = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		rem, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func scanReminder(scan func(...any) error) (Reminder, error) {
	var rem Reminder
	err := scan(&rem.ID, &rem.UserID, &rem.Title, &rem.Description, &rem.DueAt, &rem.Priority, &rem.Color, &rem.Repeat, &rem.Notified, &rem.CreatedAt)
	return rem, err
}
