package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new user. Fails with ErrExists when the email or login id
// is already taken.
func (r *Repository) Insert(ctx context.Context, u User) (User, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR login_id = $2)
	`, u.Email, u.LoginID).Scan(&taken)
	if err != nil {
		return User{}, fmt.Errorf("check existing user: %w", err)
	}
	if taken {
		return User{}, ErrExists
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, login_id, password_hash, role, profile_pic, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, u.ID, u.Name, u.Email, u.LoginID, u.PasswordHash, u.Role, u.ProfilePic, u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// FindByLogin looks a user up by email or login id.
func (r *Repository) FindByLogin(ctx context.Context, emailOrID string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, login_id, password_hash, role, profile_pic, created_at
		FROM users WHERE email = $1 OR login_id = $1
	`, emailOrID)
	return scanUser(row)
}

// FindByID returns a single user by id.
func (r *Repository) FindByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, login_id, password_hash, role, profile_pic, created_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// List returns all users, or only those with the given role when role is
// non-empty.
func (r *Repository) List(ctx context.Context, role string) ([]User, error) {
	query := `
		SELECT id, name, email, login_id, password_hash, role, profile_pic, created_at
		FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.LoginID, &u.PasswordHash, &u.Role, &u.ProfilePic, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes a user by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.LoginID, &u.PasswordHash, &u.Role, &u.ProfilePic, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
