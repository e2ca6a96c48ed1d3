package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"voyage/internal/domain/models"
	"voyage/internal/http/middleware"
	"voyage/internal/services"
)

// Trips serves /trips, its steps, sharing and verification.
type Trips struct {
	Svc services.TripService
}

// GET /api/trips
func (h Trips) List(c *gin.Context) {
	list, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/trips/me
func (h Trips) Mine(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.Svc.ListMine(c.Request.Context(), rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/trips
func (h Trips) Create(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req models.TripInput
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), rc, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GET /api/trips/:id
func (h Trips) Get(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), rc, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// PATCH /api/trips/:id
func (h Trips) Update(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.TripUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), rc, id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DELETE /api/trips/:id
func (h Trips) Delete(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), rc, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/trips/share/:id
func (h Trips) Share(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sc, err := h.Svc.Share(c.Request.Context(), rc, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

// POST /api/trips/import/:code
func (h Trips) Import(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		respondError(c, http.StatusBadRequest, "invalid_code", "invalid share code", nil)
		return
	}
	t, err := h.Svc.Import(c.Request.Context(), rc, code)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// POST /api/trips/:id/verify
func (h Trips) Verify(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	report, err := h.Svc.Verify(c.Request.Context(), rc, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/trips/:id/itinerary.pdf
func (h Trips) Itinerary(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.Svc.Itinerary(c.Request.Context(), rc, id, middleware.GetRequestID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
