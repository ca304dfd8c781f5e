package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"classhub/internal/attendance"
	"classhub/internal/classroom"
	"classhub/internal/community"
	"classhub/internal/config"
	"classhub/internal/reminder"
	"classhub/internal/upload"
	"classhub/internal/user"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	cfg         config.App
	users       *user.Service
	classrooms  *classroom.Service
	communities *community.Service
	reminders   *reminder.Service
	attendance  *attendance.Service
	uploads     *upload.Client // nil when attachment storage is not configured
}

// New creates a handler.
func New(cfg config.App, users *user.Service, classrooms *classroom.Service,
	communities *community.Service, reminders *reminder.Service,
	att *attendance.Service, uploads *upload.Client) *Handler {
	return &Handler{
		cfg:         cfg,
		users:       users,
		classrooms:  classrooms,
		communities: communities,
		reminders:   reminders,
		attendance:  att,
		uploads:     uploads,
	}
}

// fail maps service errors to HTTP statuses. Unknown errors become 500 and
// never leak driver details to the client.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrForbiddenRole),
		errors.Is(err, attendance.ErrNotCreator),
		errors.Is(err, attendance.ErrNotMember),
		errors.Is(err, classroom.ErrNotCreator),
		errors.Is(err, classroom.ErrNotMember),
		errors.Is(err, community.ErrNotTeacher),
		errors.Is(err, community.ErrNotAuthor),
		errors.Is(err, community.ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, classroom.ErrNotFound),
		errors.Is(err, community.ErrNotFound),
		errors.Is(err, community.ErrMessageNotFound),
		errors.Is(err, reminder.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, attendance.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrDuplicateSession),
		errors.Is(err, attendance.ErrSessionExpired),
		errors.Is(err, attendance.ErrAlreadyMarked),
		errors.Is(err, attendance.ErrOutOfGeofence),
		errors.Is(err, attendance.ErrInvalidCoordinate),
		errors.Is(err, classroom.ErrAlreadyJoined),
		errors.Is(err, community.ErrAlreadyMember),
		errors.Is(err, community.ErrEmptyMessage),
		errors.Is(err, community.ErrBadFileType),
		errors.Is(err, community.ErrFileTooLarge),
		errors.Is(err, user.ErrExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
