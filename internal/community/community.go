package community

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates the community does not exist.
	ErrNotFound = errors.New("community not found")
	// ErrMessageNotFound indicates the message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrAlreadyMember indicates the user already joined.
	ErrAlreadyMember = errors.New("already a member of this community")
	// ErrNotMember indicates the user is not a member.
	ErrNotMember = errors.New("not a member of this community")
	// ErrNotAuthor indicates the caller did not write the message.
	ErrNotAuthor = errors.New("not the author of this message")
	// ErrNotTeacher indicates only the owning teacher (or an admin) may post.
	ErrNotTeacher = errors.New("only the teacher or admin can post messages")
	// ErrEmptyMessage indicates neither text nor a file was supplied.
	ErrEmptyMessage = errors.New("message must contain text or a file")
	// ErrBadFileType indicates the attachment extension is not allowed.
	ErrBadFileType = errors.New("invalid file type, only pdf, doc, docx allowed")
	// ErrFileTooLarge indicates the attachment exceeds the size cap.
	ErrFileTooLarge = errors.New("file size too large, max 5MB allowed")
)

// MaxFileSize caps message attachments at 5 MB.
const MaxFileSize = 5 * 1024 * 1024

// Community is a teacher-run message board.
type Community struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TeacherID   string   `json:"teacher_id"`
	IsActive    bool     `json:"is_active"`
	Members     []string `json:"members,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileMeta describes a message attachment already stored elsewhere.
type FileMeta struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// Message is a post on a community board, text and/or file.
type Message struct {
	ID          string    `json:"id"`
	CommunityID string    `json:"community_id"`
	AuthorID    string    `json:"author_id"`
	Text        string    `json:"text"`
	File        *FileMeta `json:"file,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

var allowedExtensions = map[string]bool{"pdf": true, "doc": true, "docx": true}

// ValidateAttachment checks the extension and size rules for an attachment.
func ValidateAttachment(filename string, size int64) (fileType string, err error) {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return "", ErrBadFileType
	}
	ext := strings.ToLower(filename[dot+1:])
	if !allowedExtensions[ext] {
		return "", ErrBadFileType
	}
	if size > MaxFileSize {
		return "", ErrFileTooLarge
	}
	return ext, nil
}
