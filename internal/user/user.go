package user

import "time"

// Roles a user account can hold.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleTeacher || role == RoleAdmin
}

// User is a registered account. LoginID is the human-chosen identifier used
// alongside email for login. PasswordHash never leaves the package boundary
// in API responses.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	LoginID      string    `json:"login_id"`
	Role         string    `json:"role"`
	ProfilePic   string    `json:"profile_pic,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
