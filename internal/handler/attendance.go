package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classhub/internal/attendance"
	"classhub/internal/auth"
	"classhub/internal/user"
)

type sessionRequest struct {
	ClassroomID string  `json:"classroomId" binding:"required"`
	Latitude    float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" binding:"min=-180,max=180"`
}

// StartAttendance opens a geofenced session anchored at the caller's
// coordinates (teacher/admin).
func (h *Handler) StartAttendance(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.classrooms.Get(ctx, req.ClassroomID); err != nil {
		fail(c, err)
		return
	}
	session, err := h.attendance.Open(ctx, req.ClassroomID, claims.UserID, claims.Role,
		attendance.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "attendance started", "attendance": session})
}

// MarkAttendance records the calling student's presence in the classroom's
// current session.
func (h *Handler) MarkAttendance(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.classrooms.Get(ctx, req.ClassroomID); err != nil {
		fail(c, err)
		return
	}
	if _, err := h.attendance.Mark(ctx, req.ClassroomID, claims.UserID,
		attendance.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attendance marked successfully"})
}

// AttendanceRecords returns a classroom's sessions with marks, newest
// first. Teachers must own the classroom; students must be members.
func (h *Handler) AttendanceRecords(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	classroomID := c.Param("classroomId")
	ctx := c.Request.Context()
	if _, err := h.classrooms.Get(ctx, classroomID); err != nil {
		fail(c, err)
		return
	}

	var allowed bool
	var err error
	if claims.Role == user.RoleTeacher || claims.Role == user.RoleAdmin {
		allowed, err = h.classrooms.IsCreator(ctx, classroomID, claims.UserID)
	} else {
		allowed, err = h.classrooms.IsMember(ctx, classroomID, claims.UserID)
	}
	if err != nil {
		fail(c, err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	records, err := h.attendance.ListByClassroom(ctx, classroomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// AttendanceScore returns the calling student's session counts.
func (h *Handler) AttendanceScore(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	score, err := h.attendance.ScoreFor(c.Request.Context(), c.Param("classroomId"), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// ClassroomScores returns per-student counts for the whole roster
// (teacher/admin).
func (h *Handler) ClassroomScores(c *gin.Context) {
	classroomID := c.Param("classroomId")
	ctx := c.Request.Context()
	if _, err := h.classrooms.Get(ctx, classroomID); err != nil {
		fail(c, err)
		return
	}
	scores, err := h.attendance.ClassroomScores(ctx, classroomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

// ExportAttendance streams the classroom report as a CSV download
// (teacher/admin).
func (h *Handler) ExportAttendance(c *gin.Context) {
	classroomID := c.Param("classroomId")
	ctx := c.Request.Context()
	if _, err := h.classrooms.Get(ctx, classroomID); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="attendance_report.csv"`)
	if err := h.attendance.WriteCSV(ctx, classroomID, c.Writer); err != nil {
		fail(c, err)
		return
	}
}
