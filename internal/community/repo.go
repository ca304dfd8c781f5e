package community

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists communities, membership, and messages in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new community.
func (r *Repository) Insert(ctx context.Context, c Community) (Community, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO communities (id, name, description, teacher_id, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.Name, c.Description, c.TeacherID, c.IsActive, c.CreatedAt)
	if err != nil {
		return Community{}, err
	}
	return c, nil
}

// NameExists reports whether a community name is taken.
func (r *Repository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM communities WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

// FindByID returns a community with its member ids.
func (r *Repository) FindByID(ctx context.Context, id string) (Community, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, teacher_id, is_active, created_at
		FROM communities WHERE id = $1
	`, id)
	var c Community
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.TeacherID, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Community{}, ErrNotFound
	}
	if err != nil {
		return Community{}, err
	}
	c.Members, err = r.memberIDs(ctx, c.ID)
	return c, err
}

// ListAll returns every community with member ids.
func (r *Repository) ListAll(ctx context.Context) ([]Community, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, teacher_id, is_active, created_at
		FROM communities ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Community
	for rows.Next() {
		var c Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.TeacherID, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Members, err = r.memberIDs(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete removes a community; members and messages cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember joins a user; ErrAlreadyMember when the row exists.
func (r *Repository) AddMember(ctx context.Context, communityID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO community_members (community_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (community_id, user_id) DO NOTHING
	`, communityID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyMember
	}
	return nil
}

// RemoveMember removes a user; ErrNotMember when no row existed.
func (r *Repository) RemoveMember(ctx context.Context, communityID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM community_members WHERE community_id = $1 AND user_id = $2
	`, communityID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotMember
	}
	return nil
}

// IsMember reports membership.
func (r *Repository) IsMember(ctx context.Context, communityID, userID string) (bool, error) {
	var is bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM community_members WHERE community_id = $1 AND user_id = $2
		)
	`, communityID, userID).Scan(&is)
	return is, err
}

// InsertMessage writes a new message.
func (r *Repository) InsertMessage(ctx context.Context, m Message) (Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	var url, name, ftype *string
	var size *int64
	if m.File != nil {
		url, name, ftype, size = &m.File.URL, &m.File.Filename, &m.File.FileType, &m.File.FileSize
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO community_messages (id, community_id, author_id, body, file_url, file_name, file_type, file_size, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, m.ID, m.CommunityID, m.AuthorID, m.Text, url, name, ftype, size, m.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// FindMessage returns a message scoped to its community.
func (r *Repository) FindMessage(ctx context.Context, communityID, messageID string) (Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, community_id, author_id, body, file_url, file_name, file_type, file_size, created_at
		FROM community_messages WHERE id = $1 AND community_id = $2
	`, messageID, communityID)
	m, err := scanMessage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrMessageNotFound
	}
	return m, err
}

// UpdateMessageText edits a message body.
func (r *Repository) UpdateMessageText(ctx context.Context, messageID, text string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE community_messages SET body = $2 WHERE id = $1`, messageID, text)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteMessage removes a message.
func (r *Repository) DeleteMessage(ctx context.Context, messageID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM community_messages WHERE id = $1`, messageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ListMessages returns a community's messages, oldest first.
func (r *Repository) ListMessages(ctx context.Context, communityID string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, community_id, author_id, body, file_url, file_name, file_type, file_size, created_at
		FROM community_messages
		WHERE community_id = $1
		ORDER BY created_at
	`, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) memberIDs(ctx context.Context, communityID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM community_members WHERE community_id = $1 ORDER BY joined_at
	`, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanMessage(scan func(...any) error) (Message, error) {
	var m Message
	var url, name, ftype sql.NullString
	var size sql.NullInt64
	err := scan(&m.ID, &m.CommunityID, &m.AuthorID, &m.Text, &url, &name, &ftype, &size, &m.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	if url.Valid {
		m.File = &FileMeta{URL: url.String, Filename: name.String, FileType: ftype.String, FileSize: size.Int64}
	}
	return m, nil
}
