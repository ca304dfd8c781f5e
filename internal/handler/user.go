package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classhub/internal/auth"
	"classhub/internal/user"
)

// Me returns the calling user's own profile.
func (h *Handler) Me(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	u, err := h.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ListUsers returns all users (admin only).
func (h *Handler) ListUsers(c *gin.Context) {
	h.listUsersByRole(c, "")
}

// ListStudents returns all students (admin only).
func (h *Handler) ListStudents(c *gin.Context) {
	h.listUsersByRole(c, user.RoleStudent)
}

// ListTeachers returns all teachers (admin only).
func (h *Handler) ListTeachers(c *gin.Context) {
	h.listUsersByRole(c, user.RoleTeacher)
}

func (h *Handler) listUsersByRole(c *gin.Context, role string) {
	users, err := h.users.List(c.Request.Context(), role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// DeleteUser removes a user (admin only).
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
