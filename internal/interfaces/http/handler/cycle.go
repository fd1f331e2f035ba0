package handler

import (
	"github.com/gin-gonic/gin"

	appcutoff "github.com/freshsupply/backend/internal/application/cutoff"
	apppurchasing "github.com/freshsupply/backend/internal/application/purchasing"
)

// CycleHandler handles order cycle API endpoints
type CycleHandler struct {
	BaseHandler
	cycles *appcutoff.CycleService
}

// NewCycleHandler creates a new CycleHandler
func NewCycleHandler(cycles *appcutoff.CycleService) *CycleHandler {
	return &CycleHandler{cycles: cycles}
}

// ConfirmResultResponse represents the outcome of a cycle confirmation
type ConfirmResultResponse struct {
	ConfirmedOrders int                             `json:"confirmed_orders"`
	FailedOrders    int                             `json:"failed_orders"`
	Generated       []PurchaseOrderResponse         `json:"generated"`
	Skipped         []apppurchasing.SkippedSupplier `json:"skipped"`
	Cycle           *appcutoff.CycleStatus          `json:"cycle"`
}

// Status returns the current cycle state
func (h *CycleHandler) Status(c *gin.Context) {
	status, err := h.cycles.GetStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Confirm promotes today's regular orders, generates supplier purchase
// orders, and marks the cycle confirmed
func (h *CycleHandler) Confirm(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BindingError(c, err)
		return
	}

	result, err := h.cycles.Confirm(c.Request.Context(), req.actorOrDefault())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ConfirmResultResponse{
		ConfirmedOrders: result.ConfirmedOrders,
		FailedOrders:    result.FailedOrders,
		Generated:       make([]PurchaseOrderResponse, 0, len(result.Generated)),
		Skipped:         result.Skipped,
		Cycle:           result.Cycle,
	}
	for _, order := range result.Generated {
		resp.Generated = append(resp.Generated, toPurchaseOrderResponse(order))
	}

	h.Success(c, resp)
}

// Reset manually resets the cycle to unconfirmed
func (h *CycleHandler) Reset(c *gin.Context) {
	status, err := h.cycles.Reset(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// RegisterRoutes registers cycle routes
func (h *CycleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cycle := rg.Group("/cycle")
	{
		cycle.GET("", h.Status)
		cycle.POST("/confirm", h.Confirm)
		cycle.POST("/reset", h.Reset)
	}
}
