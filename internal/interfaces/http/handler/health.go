package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/freshsupply/backend/internal/infrastructure/persistence"
)

// HealthHandler handles liveness and readiness checks
type HealthHandler struct {
	BaseHandler
	db *persistence.Database
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *persistence.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports process health and database reachability
func (h *HealthHandler) Check(c *gin.Context) {
	status := gin.H{"status": "ok"}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(503, status)
			return
		}
		status["database"] = "ok"
	}

	c.JSON(200, status)
}

// RegisterRoutes registers health routes
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/healthz", h.Check)
}
