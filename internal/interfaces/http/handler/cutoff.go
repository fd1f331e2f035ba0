package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appcutoff "github.com/freshsupply/backend/internal/application/cutoff"
	appnotification "github.com/freshsupply/backend/internal/application/notification"
	apppurchasing "github.com/freshsupply/backend/internal/application/purchasing"
	domcutoff "github.com/freshsupply/backend/internal/domain/cutoff"
)

// CutoffHandler handles cutoff window API endpoints
type CutoffHandler struct {
	BaseHandler
	windows *appcutoff.WindowService
}

// NewCutoffHandler creates a new CutoffHandler
func NewCutoffHandler(windows *appcutoff.WindowService) *CutoffHandler {
	return &CutoffHandler{windows: windows}
}

// ActorRequest carries the operator name for audited actions
type ActorRequest struct {
	Actor string `json:"actor" binding:"omitempty,max=100"`
}

func (r ActorRequest) actorOrDefault() string {
	if r.Actor == "" {
		return "system"
	}
	return r.Actor
}

// WindowResponse represents the cutoff window in API responses
type WindowResponse struct {
	Status   string     `json:"status"`
	OpenedAt *time.Time `json:"opened_at,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
	ClosedBy string     `json:"closed_by,omitempty"`
}

func toWindowResponse(w *domcutoff.Window) WindowResponse {
	return WindowResponse{
		Status:   string(w.Status),
		OpenedAt: w.OpenedAt,
		ClosedAt: w.ClosedAt,
		ClosedBy: w.ClosedBy,
	}
}

// CloseResultResponse represents the outcome of the close pipeline
type CloseResultResponse struct {
	WindowClosed    bool                            `json:"window_closed"`
	ConfirmedOrders int                             `json:"confirmed_orders"`
	Generated       []PurchaseOrderResponse         `json:"generated"`
	Skipped         []apppurchasing.SkippedSupplier `json:"skipped"`
	Notifications   []appnotification.SendOutcome   `json:"notifications"`
}

// Status returns the current cutoff window
func (h *CutoffHandler) Status(c *gin.Context) {
	window, err := h.windows.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWindowResponse(window))
}

// Open opens (or re-opens) the cutoff window
func (h *CutoffHandler) Open(c *gin.Context) {
	window, err := h.windows.Open(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWindowResponse(window))
}

// Close runs the full close pipeline: aggregate, generate purchase
// orders, notify suppliers, promote fully-notified sale orders
func (h *CutoffHandler) Close(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BindingError(c, err)
		return
	}

	result, err := h.windows.Close(c.Request.Context(), req.actorOrDefault())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := CloseResultResponse{
		WindowClosed:    result.WindowClosed,
		ConfirmedOrders: result.ConfirmedOrders,
		Generated:       make([]PurchaseOrderResponse, 0, len(result.Generated)),
		Skipped:         result.Skipped,
		Notifications:   result.Notifications,
	}
	for _, order := range result.Generated {
		resp.Generated = append(resp.Generated, toPurchaseOrderResponse(order))
	}

	h.Success(c, resp)
}

// CloseOnly closes the window without generating purchase orders
func (h *CutoffHandler) CloseOnly(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BindingError(c, err)
		return
	}

	window, err := h.windows.CloseOnly(c.Request.Context(), req.actorOrDefault())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWindowResponse(window))
}

// RegisterRoutes registers cutoff routes
func (h *CutoffHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cutoff := rg.Group("/cutoff")
	{
		cutoff.GET("", h.Status)
		cutoff.POST("/open", h.Open)
		cutoff.POST("/close", h.Close)
		cutoff.POST("/close-only", h.CloseOnly)
	}
}
