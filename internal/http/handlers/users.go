package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
)

func publicUsers(list []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(list))
	for _, u := range list {
		out = append(out, u.ToPublic())
	}
	return out
}

// GET /api/users
func (h Users) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicUsers(list))
}

// GET /api/users/roles
func (h Users) Roles(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Roles())
}

// POST /api/users
func (h Users) Create(c *gin.Context) {
	var req models.UserInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u.ToPublic())
}

// GET /api/users/me
func (h Users) Me(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	u, err := h.Svc.Current(c.Request.Context(), rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToPublic())
}

// PATCH /api/users/me
func (h Users) UpdateMe(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req models.UserUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), int64(rc.UserID), req, true)
	if err != nil {
		if domain.IsNotFound(err) {
			err = domain.UnauthorizedError{Msg: "account no longer exists", Err: err}
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToPublic())
}

// DELETE /api/users/me
func (h Users) DeleteMe(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), int64(rc.UserID)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/users/:id
func (h Users) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToPublic())
}

// PATCH|PUT /api/users/:id
func (h Users) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UserUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), id, req, false)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToPublic())
}

// DELETE /api/users/:id
func (h Users) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type roleRequest struct {
	Role string `json:"role"`
}

// PUT /api/users/:id/role
func (h Users) SetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Svc.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToPublic())
}

// DELETE /api/users/:id/role
func (h Users) ResetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.Svc.ResetRole(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToPublic())
}
