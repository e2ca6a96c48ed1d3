package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyage/internal/domain/models"
)

// GET /api/trips/:id/steps
func (h Trips) ListSteps(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	steps, err := h.Svc.ListSteps(c.Request.Context(), rc, tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, steps)
}

// POST /api/trips/:id/steps
func (h Trips) AddStep(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.StepInput
	if !BindJSONOrError(c, &req) {
		return
	}
	st, err := h.Svc.AddStep(c.Request.Context(), rc, tripID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// GET /api/trips/:id/steps/:stepId
func (h Trips) GetStep(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	stepID, ok := paramID(c, "stepId")
	if !ok {
		return
	}
	st, err := h.Svc.GetStep(c.Request.Context(), rc, tripID, stepID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PATCH /api/trips/:id/steps/:stepId
func (h Trips) UpdateStep(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	stepID, ok := paramID(c, "stepId")
	if !ok {
		return
	}
	var req models.StepUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	st, err := h.Svc.UpdateStep(c.Request.Context(), rc, tripID, stepID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// DELETE /api/trips/:id/steps/:stepId
func (h Trips) DeleteStep(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	stepID, ok := paramID(c, "stepId")
	if !ok {
		return
	}
	if err := h.Svc.DeleteStep(c.Request.Context(), rc, tripID, stepID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
