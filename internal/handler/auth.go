package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classhub/internal/auth"
	"classhub/internal/user"
)

type registerRequest struct {
	Name     string `json:"user_name" binding:"required,min=2,max=50"`
	Email    string `json:"user_email" binding:"required,email"`
	LoginID  string `json:"user_id" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"user_role" binding:"required,oneof=student teacher admin"`
}

// Register creates an account. New teachers get a community provisioned.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.users.Register(c.Request.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		LoginID:  req.LoginID,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully", "user": created})
}

type loginRequest struct {
	EmailOrID string `json:"emailOrId" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// Login authenticates by email or login id and returns a signed token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.Login(c.Request.Context(), req.EmailOrID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, exp, err := auth.Issue(u.ID, u.Role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.Unix(),
		"user":       gin.H{"id": u.ID, "name": u.Name, "role": u.Role},
	})
}
