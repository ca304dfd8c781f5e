package attendance

import (
	"errors"
	"time"
)

const (
	// DefaultDurationMinutes is how long a session accepts marks.
	DefaultDurationMinutes = 2
	// DedupWindow is the trailing window in which a second session for the
	// same classroom is rejected as a double-start.
	DedupWindow = 2 * time.Minute
	// GeofenceRadiusKm is the acceptance radius around a session's anchor.
	// A mark exactly on the boundary is accepted.
	GeofenceRadiusKm = 0.03
)

var (
	// ErrForbiddenRole indicates the caller's role may not perform the operation.
	ErrForbiddenRole = errors.New("role not allowed")
	// ErrNotCreator indicates the opener does not own the classroom.
	ErrNotCreator = errors.New("not the creator of this classroom")
	// ErrNotMember indicates the student has not joined the classroom.
	ErrNotMember = errors.New("not part of this classroom")
	// ErrDuplicateSession indicates a session was already started recently.
	ErrDuplicateSession = errors.New("attendance already started recently")
	// ErrNoActiveSession indicates no session has begun for the classroom.
	ErrNoActiveSession = errors.New("no active attendance session found")
	// ErrSessionExpired indicates the resolved session's window has passed.
	ErrSessionExpired = errors.New("attendance session has expired")
	// ErrAlreadyMarked indicates the student already marked this session.
	ErrAlreadyMarked = errors.New("attendance already marked")
	// ErrOutOfGeofence indicates the submitted location is outside the radius.
	ErrOutOfGeofence = errors.New("not within the allowed geofence")
	// ErrInvalidCoordinate indicates latitude or longitude is out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinates")
)

// Session is a single attendance-taking window for a classroom, anchored to
// a location and a time range. StartTime, Anchor, and DurationMinutes are
// immutable after creation; only Marks grows.
type Session struct {
	ID              string     `json:"id"`
	ClassroomID     string     `json:"classroom_id"`
	StartedBy       string     `json:"started_by"`
	StartTime       time.Time  `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Anchor          Coordinate `json:"anchor"`
	Marks           []Mark     `json:"marked_students"`
}

// Mark is a student's recorded presence in a session.
type Mark struct {
	StudentID string     `json:"student_id"`
	MarkedAt  time.Time  `json:"marked_at"`
	Location  Coordinate `json:"location"`
}

// EndTime is the instant after which the session no longer accepts marks.
func (s Session) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// HasMarked reports whether the student already appears in the session.
func (s Session) HasMarked(studentID string) bool {
	for _, m := range s.Marks {
		if m.StudentID == studentID {
			return true
		}
	}
	return false
}
