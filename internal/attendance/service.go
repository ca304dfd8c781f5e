package attendance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"classhub/internal/classroom"
)

var (
	sessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classhub_attendance_sessions_opened_total",
		Help: "Attendance sessions opened.",
	})
	marksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classhub_attendance_marks_total",
		Help: "Attendance mark attempts by outcome.",
	}, []string{"result"})
)

// Store is the persistence contract for sessions and marks. Implementations
// must enforce the dedup window atomically with the insert and at most one
// mark per (session, student).
type Store interface {
	CreateSession(ctx context.Context, s Session, dedupWindow time.Duration) (Session, error)
	LatestSession(ctx context.Context, classroomID string, now time.Time) (Session, error)
	AppendMark(ctx context.Context, sessionID string, m Mark) error
	ListSessions(ctx context.Context, classroomID string) ([]Session, error)
	CountSessions(ctx context.Context, classroomID string) (int, error)
	CountAttended(ctx context.Context, classroomID, studentID string) (int, error)
}

// Roster answers membership questions about a classroom.
type Roster interface {
	IsCreator(ctx context.Context, classroomID, userID string) (bool, error)
	IsMember(ctx context.Context, classroomID, userID string) (bool, error)
	ListMembers(ctx context.Context, classroomID string) ([]classroom.Member, error)
}

// geofenceToleranceKm absorbs floating-point excess for marks sitting right
// on the radius, so the boundary itself accepts. 0.1 m is far below GPS
// accuracy.
const geofenceToleranceKm = 0.0001

// Service owns the attendance-session lifecycle, geofence validation, and
// score reporting.
type Service struct {
	store  Store
	roster Roster
	now    func() time.Time
}

// NewService creates a service backed by a session store and a classroom
// roster.
func NewService(store Store, roster Roster) *Service {
	return &Service{
		store:  store,
		roster: roster,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Open starts an attendance session for a classroom, anchored to the
// supplied coordinates. Only teachers and admins may open, and a teacher
// must be the classroom's creator. A session opened within the trailing
// two-minute window blocks a second open.
func (s *Service) Open(ctx context.Context, classroomID, openerID, openerRole string, anchor Coordinate) (Session, error) {
	if openerRole != "teacher" && openerRole != "admin" {
		return Session{}, ErrForbiddenRole
	}
	if !anchor.Valid() {
		return Session{}, ErrInvalidCoordinate
	}
	if openerRole != "admin" {
		isCreator, err := s.roster.IsCreator(ctx, classroomID, openerID)
		if err != nil {
			return Session{}, fmt.Errorf("creator check: %w", err)
		}
		if !isCreator {
			return Session{}, ErrNotCreator
		}
	}

	created, err := s.store.CreateSession(ctx, Session{
		ClassroomID:     classroomID,
		StartedBy:       openerID,
		StartTime:       s.now(),
		DurationMinutes: DefaultDurationMinutes,
		Anchor:          anchor,
	}, DedupWindow)
	if err != nil {
		return Session{}, err
	}
	sessionsOpened.Inc()
	return created, nil
}

// Mark records a student's presence in the classroom's current session.
// Checks run in order: membership, expiry, duplicate, geofence; the first
// failure wins. The session is always the most recently started one, even
// when it has already expired.
func (s *Service) Mark(ctx context.Context, classroomID, studentID string, loc Coordinate) (Mark, error) {
	if !loc.Valid() {
		return Mark{}, ErrInvalidCoordinate
	}
	isMember, err := s.roster.IsMember(ctx, classroomID, studentID)
	if err != nil {
		return Mark{}, fmt.Errorf("membership check: %w", err)
	}
	if !isMember {
		marksTotal.WithLabelValues("not_member").Inc()
		return Mark{}, ErrNotMember
	}

	now := s.now()
	session, err := s.store.LatestSession(ctx, classroomID, now)
	if err != nil {
		return Mark{}, err
	}
	if now.After(session.EndTime()) {
		marksTotal.WithLabelValues("expired").Inc()
		return Mark{}, ErrSessionExpired
	}
	if session.HasMarked(studentID) {
		marksTotal.WithLabelValues("duplicate").Inc()
		return Mark{}, ErrAlreadyMarked
	}
	if DistanceKm(loc, session.Anchor) > GeofenceRadiusKm+geofenceToleranceKm {
		marksTotal.WithLabelValues("out_of_geofence").Inc()
		return Mark{}, ErrOutOfGeofence
	}

	mark := Mark{StudentID: studentID, MarkedAt: now, Location: loc}
	if err := s.store.AppendMark(ctx, session.ID, mark); err != nil {
		return Mark{}, err
	}
	marksTotal.WithLabelValues("ok").Inc()
	return mark, nil
}

// Score is a student's flat attendance count for a classroom.
type Score struct {
	TotalSessions    int `json:"totalSessions"`
	AttendedSessions int `json:"attendedSessions"`
}

// ScoreFor returns the session counts for one student.
func (s *Service) ScoreFor(ctx context.Context, classroomID, studentID string) (Score, error) {
	total, err := s.store.CountSessions(ctx, classroomID)
	if err != nil {
		return Score{}, err
	}
	attended, err := s.store.CountAttended(ctx, classroomID, studentID)
	if err != nil {
		return Score{}, err
	}
	return Score{TotalSessions: total, AttendedSessions: attended}, nil
}

// StudentScore is one roster row in a classroom report.
type StudentScore struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Attended  int    `json:"attended"`
	Total     int    `json:"total"`
}

// ClassroomScores returns per-member counts against the same session total.
func (s *Service) ClassroomScores(ctx context.Context, classroomID string) ([]StudentScore, error) {
	members, err := s.roster.ListMembers(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountSessions(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	scores := make([]StudentScore, 0, len(members))
	for _, m := range members {
		attended, err := s.store.CountAttended(ctx, classroomID, m.ID)
		if err != nil {
			return nil, err
		}
		scores = append(scores, StudentScore{
			StudentID: m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Attended:  attended,
			Total:     total,
		})
	}
	return scores, nil
}

// WriteCSV writes the classroom report as CSV with columns
// Name, Email, Present, Total, Percentage.
func (s *Service) WriteCSV(ctx context.Context, classroomID string, w io.Writer) error {
	scores, err := s.ClassroomScores(ctx, classroomID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Email", "Present", "Total", "Percentage"}); err != nil {
		return err
	}
	for _, sc := range scores {
		if err := cw.Write([]string{
			sc.Name,
			sc.Email,
			strconv.Itoa(sc.Attended),
			strconv.Itoa(sc.Total),
			Percentage(sc.Attended, sc.Total),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Percentage renders attended/total as a percentage with two decimals, or
// "0%" when no sessions exist.
func Percentage(attended, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(attended)/float64(total)*100)
}

// ListByClassroom returns the classroom's sessions, newest first, with their
// marks.
func (s *Service) ListByClassroom(ctx context.Context, classroomID string) ([]Session, error) {
	return s.store.ListSessions(ctx, classroomID)
}
