package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"voyage/internal/domain/models"
	"voyage/internal/services"
)

// catalogStore is the read/write surface shared by the sleep, eat, drink and
// enjoy services.
type catalogStore[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, in T) (T, error)
}

// Catalog serves one record type under /api/{Resource}.
type Catalog[T any] struct {
	Resource string
	Store    catalogStore[T]
	Parse    func(c *gin.Context) ([]T, error)
}

// GET /api/{x}/list
func (h Catalog[T]) Search(c *gin.Context) {
	list, err := h.Parse(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/{x}
func (h Catalog[T]) List(c *gin.Context) {
	list, err := h.Store.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/{x}/:id
func (h Catalog[T]) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rec, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/{x}/verify/:id answers the trip service's step checks.
func (h Catalog[T]) Verify(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rec, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, h.Resource: rec})
}

// POST /api/{x}
func (h Catalog[T]) Create(c *gin.Context) {
	var req T
	if !BindJSONOrError(c, &req) {
		return
	}
	rec, err := h.Store.Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func NewSleepCatalog(svc services.SleepService) Catalog[models.Sleep] {
	return Catalog[models.Sleep]{
		Resource: "sleep",
		Store:    svc,
		Parse: func(c *gin.Context) ([]models.Sleep, error) {
			p := &queryParser{c: c}
			f := models.SleepSearch{
				City:       p.requiredString("city"),
				NbAdults:   p.requiredInt("nb_adults"),
				NbChildren: p.requiredInt("nb_children"),
				Checkin:    p.requiredTime("checkin"),
				Checkout:   p.requiredTime("checkout"),
				MinPrice:   p.optionalMoney("min_price"),
				MaxPrice:   p.optionalMoney("max_price"),
			}
			if p.err != nil {
				return nil, p.err
			}
			return svc.Search(c.Request.Context(), f)
		},
	}
}

func newVenueCatalog(resource string, svc services.VenueService) Catalog[models.Venue] {
	return Catalog[models.Venue]{
		Resource: resource,
		Store:    svc,
		Parse: func(c *gin.Context) ([]models.Venue, error) {
			p := &queryParser{c: c}
			f := models.VenueSearch{
				City:       p.requiredString("city"),
				NbAdults:   p.requiredInt("nb_adults"),
				NbChildren: p.requiredInt("nb_children"),
				Date:       p.requiredTime("date"),
				MinAvis:    p.optionalFloat("min_avis"),
				MaxAvis:    p.optionalFloat("max_avis"),
			}
			if p.err != nil {
				return nil, p.err
			}
			return svc.Search(c.Request.Context(), f)
		},
	}
}

func NewEatCatalog(svc services.VenueService) Catalog[models.Venue] {
	return newVenueCatalog("eat", svc)
}

func NewDrinkCatalog(svc services.VenueService) Catalog[models.Venue] {
	return newVenueCatalog("drink", svc)
}

func NewEnjoyCatalog(svc services.EnjoyService) Catalog[models.Enjoy] {
	return Catalog[models.Enjoy]{
		Resource: "enjoy",
		Store:    svc,
		Parse: func(c *gin.Context) ([]models.Enjoy, error) {
			p := &queryParser{c: c}
			f := models.EnjoySearch{
				City:       p.requiredString("city"),
				NbAdults:   p.requiredInt("nb_adults"),
				NbChildren: p.requiredInt("nb_children"),
				Date:       p.requiredTime("date"),
				MinPrice:   p.optionalMoney("min_price"),
				MaxPrice:   p.optionalMoney("max_price"),
			}
			if p.err != nil {
				return nil, p.err
			}
			return svc.Search(c.Request.Context(), f)
		},
	}
}
