package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	intdb "voyage/internal/db"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

// System serves the probes every service exposes.
type System struct {
	Service string
	DB      *sql.DB
}

func (s System) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": s.Service})
}

// DBCheck pings the database and reports which of the service's tables exist.
func (s System) DBCheck(c *gin.Context) {
	if s.DB == nil {
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database ping failed", err.Error())
		return
	}

	tables := gin.H{}
	for _, t := range intdb.Tables(s.Service) {
		tables[t] = intdb.HasTable(ctx, s.DB, t)
	}
	c.JSON(http.StatusOK, gin.H{"message": "database OK", "service": s.Service, "tables": tables})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "not_ready", "router not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
