package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classhub/internal/auth"
	"classhub/internal/reminder"
)

type reminderRequest struct {
	Title       string    `json:"title" binding:"required,max=100"`
	Description string    `json:"description" binding:"max=500"`
	DueAt       time.Time `json:"dateTime" binding:"required"`
	Priority    string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	Color       string    `json:"color"`
	Repeat      string    `json:"repeat" binding:"omitempty,oneof=none daily weekly monthly"`
}

func (r reminderRequest) input() reminder.Input {
	return reminder.Input{
		Title:       r.Title,
		Description: r.Description,
		DueAt:       r.DueAt,
		Priority:    r.Priority,
		Color:       r.Color,
		Repeat:      r.Repeat,
	}
}

// ListReminders returns the caller's reminders ordered by due time.
func (h *Handler) ListReminders(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	reminders, err := h.reminders.List(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

// CreateReminder adds a reminder for the caller.
func (h *Handler) CreateReminder(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.reminders.Create(c.Request.Context(), claims.UserID, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetReminder returns one of the caller's reminders.
func (h *Handler) GetReminder(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	rem, err := h.reminders.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rem)
}

// UpdateReminder replaces a reminder's editable fields.
func (h *Handler) UpdateReminder(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.reminders.Update(c.Request.Context(), c.Param("id"), claims.UserID, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteReminder removes one of the caller's reminders.
func (h *Handler) DeleteReminder(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	if err := h.reminders.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reminder deleted"})
}
