package classroom

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists classrooms and membership in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new classroom.
func (r *Repository) Insert(ctx context.Context, c Classroom) (Classroom, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO classrooms (id, code, name, description, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.Code, c.Name, c.Description, c.CreatedBy, c.CreatedAt)
	if err != nil {
		return Classroom{}, err
	}
	return c, nil
}

// CodeExists reports whether a join code is already taken.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM classrooms WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// FindByID returns a classroom by id.
func (r *Repository) FindByID(ctx context.Context, id string) (Classroom, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, description, created_by, created_at
		FROM classrooms WHERE id = $1
	`, id)
	return scanClassroom(row)
}

// FindByCode returns a classroom by join code.
func (r *Repository) FindByCode(ctx context.Context, code string) (Classroom, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, description, created_by, created_at
		FROM classrooms WHERE code = $1
	`, code)
	return scanClassroom(row)
}

// ListCreatedBy returns classrooms the user created.
func (r *Repository) ListCreatedBy(ctx context.Context, userID string) ([]Classroom, error) {
	return r.list(ctx, `
		SELECT id, code, name, description, created_by, created_at
		FROM classrooms WHERE created_by = $1 ORDER BY created_at DESC
	`, userID)
}

// ListJoinedBy returns classrooms the user has joined.
func (r *Repository) ListJoinedBy(ctx context.Context, userID string) ([]Classroom, error) {
	return r.list(ctx, `
		SELECT c.id, c.code, c.name, c.description, c.created_by, c.created_at
		FROM classrooms c
		JOIN classroom_students cs ON cs.classroom_id = c.id
		WHERE cs.student_id = $1
		ORDER BY c.created_at DESC
	`, userID)
}

// ListAll returns every classroom.
func (r *Repository) ListAll(ctx context.Context) ([]Classroom, error) {
	return r.list(ctx, `
		SELECT id, code, name, description, created_by, created_at
		FROM classrooms ORDER BY created_at DESC
	`)
}

// Update edits mutable fields.
func (r *Repository) Update(ctx context.Context, c Classroom) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE classrooms SET name = $2, description = $3 WHERE id = $1
	`, c.ID, c.Name, c.Description)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a classroom; membership rows cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classrooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddStudent joins a student to a classroom. Fails with ErrAlreadyJoined when
// the membership row already exists.
func (r *Repository) AddStudent(ctx context.Context, classroomID, studentID string) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO classroom_students (classroom_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (classroom_id, student_id) DO NOTHING
	`, classroomID, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyJoined
	}
	return nil
}

// RemoveStudent removes a student from a classroom.
func (r *Repository) RemoveStudent(ctx context.Context, classroomID, studentID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM classroom_students WHERE classroom_id = $1 AND student_id = $2
	`, classroomID, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotMember
	}
	return nil
}

// IsCreator reports whether userID created the classroom.
func (r *Repository) IsCreator(ctx context.Context, classroomID, userID string) (bool, error) {
	var is bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM classrooms WHERE id = $1 AND created_by = $2)
	`, classroomID, userID).Scan(&is)
	return is, err
}

// IsMember reports whether userID has joined the classroom.
func (r *Repository) IsMember(ctx context.Context, classroomID, userID string) (bool, error) {
	var is bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM classroom_students WHERE classroom_id = $1 AND student_id = $2
		)
	`, classroomID, userID).Scan(&is)
	return is, err
}

// ListMembers returns the roster with names and emails.
func (r *Repository) ListMembers(ctx context.Context, classroomID string) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email
		FROM classroom_students cs
		JOIN users u ON u.id = cs.student_id
		WHERE cs.classroom_id = $1
		ORDER BY u.name
	`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Classroom, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Classroom
	for rows.Next() {
		var c Classroom
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClassroom(row *sql.Row) (Classroom, error) {
	var c Classroom
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Classroom{}, ErrNotFound
	}
	if err != nil {
		return Classroom{}, err
	}
	return c, nil
}
