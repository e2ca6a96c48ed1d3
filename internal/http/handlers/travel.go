package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyage/internal/domain/models"
	"voyage/internal/services"
)

// Travel serves /travel and the provider-backed verification.
type Travel struct {
	Svc services.TravelService
}

func parseTravelSearch(c *gin.Context) (models.TravelSearch, error) {
	p := &queryParser{c: c}
	q := models.TravelSearch{
		FromCity:   p.requiredString("from_city"),
		ToCity:     p.requiredString("to_city"),
		Departure:  p.requiredTime("departure"),
		Arrival:    p.requiredTime("arrival"),
		NbAdults:   p.requiredInt("nb_adults"),
		NbChildren: p.requiredInt("nb_children"),
		MinAvis:    p.optionalFloat("min_avis"),
		MaxAvis:    p.optionalFloat("max_avis"),
		MinPrice:   p.optionalMoney("min_price"),
		MaxPrice:   p.optionalMoney("max_price"),
	}
	return q, p.err
}

// GET /api/travel/list
func (h Travel) Search(c *gin.Context) {
	q, err := parseTravelSearch(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	offers, err := h.Svc.Search(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// GET /api/travel
func (h Travel) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/travel/:id
func (h Travel) Get(c *gin.Context) {
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

// POST /api/travel
func (h Travel) Create(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req models.Travel
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

// PUT /api/verify/:id and /api/travel/verify/:id
func (h Travel) Verify(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.Svc.Verify(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	status := http.StatusOK
	if res.Status == services.VerifyModified {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}
