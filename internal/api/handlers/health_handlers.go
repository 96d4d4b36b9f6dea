package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/porter-wallet/porter_service/internal/infrastructure/cache"
	"github.com/porter-wallet/porter_service/internal/infrastructure/database"
)

// chainPinger checks ledger RPC reachability
type chainPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers reports process and dependency health
type HealthHandlers struct {
	db    *sql.DB
	cache cache.RedisClient
	chain chainPinger
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db *sql.DB, cacheClient cache.RedisClient, chain chainPinger) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cacheClient, chain: chain}
}

// Liveness handles GET /health
func (h *HealthHandlers) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness handles GET /health/ready
func (h *HealthHandlers) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	if err := database.HealthCheck(h.db); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			// Redis is an optimization, not a dependency; report but
			// stay ready
			checks["cache"] = err.Error()
		} else {
			checks["cache"] = "ok"
		}
	} else {
		checks["cache"] = "disabled"
	}

	if err := h.chain.Ping(ctx); err != nil {
		checks["chain"] = err.Error()
		healthy = false
	} else {
		checks["chain"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": checks})
}
