package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"voyage/internal/domain"
	"voyage/internal/http/middleware"
	"voyage/internal/utils"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", err.Error())
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_"+name, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// caller is only reached behind middleware.Auth, so a miss means a wiring bug.
func caller(c *gin.Context) (domain.RequestContext, bool) {
	rc, ok := middleware.Caller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
	}
	return rc, ok
}

// queryParser collects the first bad query parameter so handlers can report
// one validation error after reading everything.
type queryParser struct {
	c   *gin.Context
	err error
}

func (p *queryParser) fail(field, msg string) {
	if p.err == nil {
		p.err = domain.ValidationError{Field: field, Msg: msg}
	}
}

func (p *queryParser) raw(field string) string {
	return strings.TrimSpace(p.c.Query(field))
}

func (p *queryParser) requiredString(field string) string {
	v := p.raw(field)
	if v == "" {
		p.fail(field, "is required")
	}
	return v
}

func (p *queryParser) requiredInt(field string) int {
	v := p.raw(field)
	if v == "" {
		p.fail(field, "is required")
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(field, "must be an integer")
	}
	return n
}

func (p *queryParser) requiredTime(field string) time.Time {
	v := p.raw(field)
	if v == "" {
		p.fail(field, "is required")
		return time.Time{}
	}
	t, err := utils.ParseFlexibleTime(v)
	if err != nil {
		p.fail(field, "must be RFC3339 or YYYY-MM-DD")
	}
	return t
}

func (p *queryParser) optionalFloat(field string) *float64 {
	v := p.raw(field)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(field, "must be a number")
		return nil
	}
	return &f
}

func (p *queryParser) optionalMoney(field string) *decimal.Decimal {
	v := p.raw(field)
	if v == "" {
		return nil
	}
	d, err := utils.ParseMoney(v)
	if err != nil {
		p.fail(field, "must be an amount")
		return nil
	}
	return &d
}
