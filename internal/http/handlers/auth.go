package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyage/internal/domain/models"
	"voyage/internal/services"
)

// Users serves /auth and /users.
type Users struct {
	Svc services.UserService
}

// POST /api/auth/login
func (h Users) Login(c *gin.Context) {
	var req models.Credentials
	if !BindJSONOrError(c, &req) {
		return
	}
	token, u, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  u.ToPublic(),
	})
}

// POST /api/auth/register
func (h Users) Register(c *gin.Context) {
	var req models.UserInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u.ToPublic())
}
