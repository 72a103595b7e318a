package handlers

import (
	"context"
	"net/http"
	"time"

	"locacar/internal/config"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "locacar backend running"})
}

func (h *Handler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := config.PingDB(ctx, h.DB); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "database ping failed", err)
		return
	}
	var vehicles int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&vehicles); err != nil {
		RespondError(c, http.StatusInternalServerError, "database query failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection ok", "vehicles_in_db": vehicles})
}

func (h *Handler) Routes(c *gin.Context) {
	h.routerMu.RLock()
	r := h.router
	h.routerMu.RUnlock()
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
