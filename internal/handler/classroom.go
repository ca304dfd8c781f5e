package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classhub/internal/auth"
)

type createClassroomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateClassroom makes a classroom owned by the caller (teacher/admin).
func (h *Handler) CreateClassroom(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req createClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.classrooms.Create(c.Request.Context(), claims.UserID, req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "classroom created", "classroom": created})
}

// JoinClassroom adds the calling student to a classroom by join code.
func (h *Handler) JoinClassroom(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	joined, err := h.classrooms.Join(c.Request.Context(), req.Code, claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined classroom", "classroom": joined})
}

// ListClassrooms returns the caller's classrooms: created ones for teachers
// and admins, joined ones for students.
func (h *Handler) ListClassrooms(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	classrooms, err := h.classrooms.ListFor(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classrooms)
}

// AllClassrooms returns every classroom (admin only).
func (h *Handler) AllClassrooms(c *gin.Context) {
	classrooms, err := h.classrooms.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classrooms)
}

// GetClassroom returns a classroom with its roster.
func (h *Handler) GetClassroom(c *gin.Context) {
	ctx := c.Request.Context()
	cls, err := h.classrooms.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	members, err := h.classrooms.Members(ctx, cls.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classroom": cls, "members": members})
}

// UpdateClassroom edits name and description (creator or admin).
func (h *Handler) UpdateClassroom(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.classrooms.Update(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "classroom updated", "classroom": updated})
}

// DeleteClassroom removes a classroom (creator or admin).
func (h *Handler) DeleteClassroom(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	if err := h.classrooms.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "classroom deleted"})
}

// LeaveClassroom removes the calling student from a classroom.
func (h *Handler) LeaveClassroom(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	if err := h.classrooms.Leave(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left classroom"})
}
