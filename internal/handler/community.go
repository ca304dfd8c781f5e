package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"classhub/internal/auth"
	"classhub/internal/community"
)

// ListCommunities returns every community.
func (h *Handler) ListCommunities(c *gin.Context) {
	communities, err := h.communities.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, communities)
}

// GetCommunity returns one community with its member ids.
func (h *Handler) GetCommunity(c *gin.Context) {
	cm, err := h.communities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cm)
}

// JoinCommunity adds the caller as a member.
func (h *Handler) JoinCommunity(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	if err := h.communities.Join(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined successfully"})
}

// LeaveCommunity removes the caller from the member list.
func (h *Handler) LeaveCommunity(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	if err := h.communities.Leave(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left community"})
}

// DeleteCommunity removes a community and its board (admin only).
func (h *Handler) DeleteCommunity(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.communities.Get(ctx, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	if err := h.communities.Delete(ctx, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "community deleted"})
}

// CommunityMessages returns a community's messages, oldest first.
func (h *Handler) CommunityMessages(c *gin.Context) {
	messages, err := h.communities.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// PostMessage posts text and/or a file attachment to a community board.
// Accepts JSON {text} or multipart form with fields text and file.
func (h *Handler) PostMessage(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	ctx := c.Request.Context()

	var text string
	var fileMeta *community.FileMeta

	if strings.Contains(c.ContentType(), "multipart/form-data") {
		text = c.PostForm("text")
		file, header, err := c.Request.FormFile("file")
		if err == nil {
			defer file.Close()
			fileType, verr := community.ValidateAttachment(header.Filename, header.Size)
			if verr != nil {
				fail(c, verr)
				return
			}
			if h.uploads == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attachment storage not configured"})
				return
			}
			data, rerr := io.ReadAll(file)
			if rerr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
				return
			}
			result, uerr := h.uploads.UploadBytes(data, header.Filename)
			if uerr != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": "file upload failed"})
				return
			}
			fileMeta = &community.FileMeta{
				URL:      result.SecureURL,
				Filename: header.Filename,
				FileType: fileType,
				FileSize: header.Size,
			}
		}
	} else {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		text = req.Text
	}

	msg, err := h.communities.PostMessage(ctx, c.Param("id"), claims.UserID, claims.Role, text, fileMeta)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "posted successfully", "data": msg})
}

// UpdateMessage edits a message's text (author only).
func (h *Handler) UpdateMessage(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text cannot be empty"})
		return
	}
	err := h.communities.UpdateMessage(c.Request.Context(), c.Param("id"), c.Param("messageId"), claims.UserID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message updated successfully"})
}

// DeleteMessage removes a message (author only).
func (h *Handler) DeleteMessage(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	err := h.communities.DeleteMessage(c.Request.Context(), c.Param("id"), c.Param("messageId"), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted successfully"})
}
