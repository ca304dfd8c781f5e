package classroom

import (
	"crypto/rand"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the classroom does not exist.
	ErrNotFound = errors.New("classroom not found")
	// ErrAlreadyJoined indicates the student is already a member.
	ErrAlreadyJoined = errors.New("already joined this classroom")
	// ErrNotMember indicates the user is not a member of the classroom.
	ErrNotMember = errors.New("not a member of this classroom")
	// ErrNotCreator indicates the caller does not own the classroom.
	ErrNotCreator = errors.New("not the creator of this classroom")
)

// Classroom is a class that students join via its code.
type Classroom struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member is the roster view of a joined student.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newCode generates a 6-character join code. The alphabet omits easily
// confused characters (0/O, 1/I).
func newCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
