package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appordering "github.com/freshsupply/backend/internal/application/ordering"
	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/interfaces/http/dto"
)

// SaleOrderHandler handles sale order API endpoints
type SaleOrderHandler struct {
	BaseHandler
	orders *appordering.SaleOrderService
}

// NewSaleOrderHandler creates a new SaleOrderHandler
func NewSaleOrderHandler(orders *appordering.SaleOrderService) *SaleOrderHandler {
	return &SaleOrderHandler{orders: orders}
}

// RejectOrderRequest carries the mandatory rejection reason
type RejectOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SaleOrderItemResponse represents a sale order line in API responses
type SaleOrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleOrderResponse represents a sale order in API responses
type SaleOrderResponse struct {
	ID                 string                  `json:"id"`
	OrderNumber        string                  `json:"order_number"`
	CustomerID         string                  `json:"customer_id"`
	CustomerName       string                  `json:"customer_name"`
	Category           string                  `json:"category"`
	Items              []SaleOrderItemResponse `json:"items"`
	TotalAmount        decimal.Decimal         `json:"total_amount"`
	Status             string                  `json:"status"`
	ConfirmationStatus string                  `json:"confirmation_status"`
	CutoffStatus       string                  `json:"cutoff_status"`
	PlacedAt           time.Time               `json:"placed_at"`
	ConfirmedAt        *time.Time              `json:"confirmed_at,omitempty"`
	PendedAt           *time.Time              `json:"pended_at,omitempty"`
	RejectedAt         *time.Time              `json:"rejected_at,omitempty"`
	CompletedAt        *time.Time              `json:"completed_at,omitempty"`
	CancelledAt        *time.Time              `json:"cancelled_at,omitempty"`
	RejectReason       string                  `json:"reject_reason,omitempty"`
	Remark             string                  `json:"remark,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	Version            int                     `json:"version"`
}

func toSaleOrderResponse(order *ordering.SaleOrder) SaleOrderResponse {
	items := make([]SaleOrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, SaleOrderItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return SaleOrderResponse{
		ID:                 order.ID.String(),
		OrderNumber:        order.OrderNumber,
		CustomerID:         order.CustomerID.String(),
		CustomerName:       order.CustomerName,
		Category:           order.Category,
		Items:              items,
		TotalAmount:        order.TotalAmount,
		Status:             string(order.Status),
		ConfirmationStatus: string(order.ConfirmationStatus),
		CutoffStatus:       string(order.CutoffStatus),
		PlacedAt:           order.PlacedAt,
		ConfirmedAt:        order.ConfirmedAt,
		PendedAt:           order.PendedAt,
		RejectedAt:         order.RejectedAt,
		CompletedAt:        order.CompletedAt,
		CancelledAt:        order.CancelledAt,
		RejectReason:       order.RejectReason,
		Remark:             order.Remark,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Version:            order.Version,
	}
}

// Create places a new sale order
func (h *SaleOrderHandler) Create(c *gin.Context) {
	var req appordering.CreateSaleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSaleOrderResponse(order))
}

// List returns a page of sale orders
func (h *SaleOrderHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if category := c.Query("category"); category != "" {
		filter.Filters["category"] = category
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.Filters["customer_id"] = customerID
	}

	page, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]SaleOrderResponse, 0, len(page.Items))
	for _, order := range page.Items {
		items = append(items, toSaleOrderResponse(order))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one sale order
func (h *SaleOrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSaleOrderResponse(order))
}

// Pend moves a placed order out of the active flow
func (h *SaleOrderHandler) Pend(c *gin.Context) {
	h.transition(c, h.orders.Pend)
}

// Complete marks a confirmed order as fulfilled
func (h *SaleOrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orders.Complete)
}

// Cancel cancels an order
func (h *SaleOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orders.Cancel)
}

// Reject rejects an order with a mandatory reason
func (h *SaleOrderHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orders.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSaleOrderResponse(order))
}

// Delete removes a pended order
func (h *SaleOrderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *SaleOrderHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*ordering.SaleOrder, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSaleOrderResponse(order))
}

// RegisterRoutes registers sale order routes
func (h *SaleOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/sale-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
		orders.POST("/:id/pend", h.Pend)
		orders.POST("/:id/reject", h.Reject)
		orders.POST("/:id/complete", h.Complete)
		orders.POST("/:id/cancel", h.Cancel)
		orders.DELETE("/:id", h.Delete)
	}
}
