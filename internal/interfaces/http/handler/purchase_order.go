package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appnotification "github.com/freshsupply/backend/internal/application/notification"
	apppurchasing "github.com/freshsupply/backend/internal/application/purchasing"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/infrastructure/logger"
	"github.com/freshsupply/backend/internal/interfaces/http/dto"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orders     purchasing.PurchaseOrderRepository
	ledgers    purchasing.PurchaseLedgerRepository
	inbound    *apppurchasing.InboundService
	dispatcher *appnotification.Dispatcher
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(
	orders purchasing.PurchaseOrderRepository,
	ledgers purchasing.PurchaseLedgerRepository,
	inbound *apppurchasing.InboundService,
	dispatcher *appnotification.Dispatcher,
) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orders:     orders,
		ledgers:    ledgers,
		inbound:    inbound,
		dispatcher: dispatcher,
	}
}

// SendSmsRequest carries the purchase order IDs to notify
type SendSmsRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1,dive,uuid"`
}

// SendSmsResponse reports the per-order outcomes and how many orders
// passed the notification gate
type SendSmsResponse struct {
	Outcomes        []appnotification.SendOutcome `json:"outcomes"`
	ConfirmedOrders int                           `json:"confirmed_orders"`
}

// InboundRequest carries the operator-entered received lines
type InboundRequest struct {
	Items      []apppurchasing.InboundItem `json:"items" binding:"required,min=1,dive"`
	ReceivedBy string                      `json:"received_by" binding:"required,min=1,max=100"`
}

// PurchaseOrderItemResponse represents a purchase order line in API responses
type PurchaseOrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	OrderCount  int             `json:"order_count"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                 string                      `json:"id"`
	OrderNumber        string                      `json:"order_number"`
	SupplierID         string                      `json:"supplier_id"`
	SupplierName       string                      `json:"supplier_name"`
	Category           string                      `json:"category"`
	Items              []PurchaseOrderItemResponse `json:"items"`
	TotalQuantity      decimal.Decimal             `json:"total_quantity"`
	TotalAmount        decimal.Decimal             `json:"total_amount"`
	Status             string                      `json:"status"`
	ConfirmationStatus string                      `json:"confirmation_status"`
	SmsSuccess         *bool                       `json:"sms_success,omitempty"`
	LastSmsSentAt      *time.Time                  `json:"last_sms_sent_at,omitempty"`
	LedgerID           *string                     `json:"ledger_id,omitempty"`
	PlacedAt           time.Time                   `json:"placed_at"`
	ConfirmedAt        *time.Time                  `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time                  `json:"completed_at,omitempty"`
	CancelledAt        *time.Time                  `json:"cancelled_at,omitempty"`
	Remark             string                      `json:"remark,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Version            int                         `json:"version"`
}

func toPurchaseOrderResponse(order *purchasing.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, PurchaseOrderItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			OrderCount:  item.OrderCount,
		})
	}

	resp := PurchaseOrderResponse{
		ID:                 order.ID.String(),
		OrderNumber:        order.OrderNumber,
		SupplierID:         order.SupplierID.String(),
		SupplierName:       order.SupplierName,
		Category:           order.Category,
		Items:              items,
		TotalQuantity:      order.TotalQuantity,
		TotalAmount:        order.TotalAmount,
		Status:             string(order.Status),
		ConfirmationStatus: string(order.ConfirmationStatus),
		SmsSuccess:         order.SmsSuccess,
		LastSmsSentAt:      order.LastSmsSentAt,
		PlacedAt:           order.PlacedAt,
		ConfirmedAt:        order.ConfirmedAt,
		CompletedAt:        order.CompletedAt,
		CancelledAt:        order.CancelledAt,
		Remark:             order.Remark,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Version:            order.Version,
	}
	if order.LedgerID != nil {
		ledgerID := order.LedgerID.String()
		resp.LedgerID = &ledgerID
	}
	return resp
}

// List returns a page of purchase orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
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
	if supplierID := c.Query("supplier_id"); supplierID != "" {
		filter.Filters["supplier_id"] = supplierID
	}

	page, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]PurchaseOrderResponse, 0, len(page.Items))
	for _, order := range page.Items {
		items = append(items, toPurchaseOrderResponse(order))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// GetByNumber returns one purchase order by its business number
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.orders.FindByOrderNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// SendSms re-sends the SMS summary for the given purchase orders
func (h *PurchaseOrderHandler) SendSms(c *gin.Context) {
	var req SendSmsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid order ID format")
			return
		}
		ids = append(ids, id)
	}

	outcomes, err := h.dispatcher.SendBatch(c.Request.Context(), ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// fully notified orders pass the gate and flip to CONFIRMED
	confirmed := appnotification.ConfirmNotified(c.Request.Context(), h.orders, outcomes, logger.GetGinLogger(c))

	h.Success(c, SendSmsResponse{Outcomes: outcomes, ConfirmedOrders: confirmed})
}

// CompleteInbound reconciles received goods against a purchase order
func (h *PurchaseOrderHandler) CompleteInbound(c *gin.Context) {
	var req InboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.inbound.CompleteInbound(c.Request.Context(), c.Param("number"), req.Items, req.ReceivedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PurchaseLedgerItemResponse represents one received line in a ledger entry
type PurchaseLedgerItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PurchaseLedgerResponse represents a ledger entry in API responses
type PurchaseLedgerResponse struct {
	ID           string                       `json:"id"`
	LedgerNumber string                       `json:"ledger_number"`
	OrderNumber  string                       `json:"order_number"`
	SupplierID   string                       `json:"supplier_id"`
	SupplierName string                       `json:"supplier_name"`
	Items        []PurchaseLedgerItemResponse `json:"items"`
	TotalAmount  decimal.Decimal              `json:"total_amount"`
	ReceivedAt   time.Time                    `json:"received_at"`
	ReceivedBy   string                       `json:"received_by"`
}

// ListLedgers returns the ledger entries recorded against a purchase order
func (h *PurchaseOrderHandler) ListLedgers(c *gin.Context) {
	order, err := h.orders.FindByOrderNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ledgers, err := h.ledgers.FindByPurchaseOrderID(c.Request.Context(), order.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]PurchaseLedgerResponse, 0, len(ledgers))
	for _, ledger := range ledgers {
		items := make([]PurchaseLedgerItemResponse, 0, len(ledger.Items))
		for _, item := range ledger.Items {
			items = append(items, PurchaseLedgerItemResponse{
				ProductID:   item.ProductID.String(),
				ProductName: item.ProductName,
				ProductCode: item.ProductCode,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal,
			})
		}
		resp = append(resp, PurchaseLedgerResponse{
			ID:           ledger.ID.String(),
			LedgerNumber: ledger.LedgerNumber,
			OrderNumber:  ledger.OrderNumber,
			SupplierID:   ledger.SupplierID.String(),
			SupplierName: ledger.SupplierName,
			Items:        items,
			TotalAmount:  ledger.TotalAmount,
			ReceivedAt:   ledger.ReceivedAt,
			ReceivedBy:   ledger.ReceivedBy,
		})
	}
	h.Success(c, resp)
}

// RegisterRoutes registers purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.GET("", h.List)
		orders.GET("/:number", h.GetByNumber)
		orders.GET("/:number/ledgers", h.ListLedgers)
		orders.POST("/send-sms", h.SendSms)
		orders.POST("/:number/inbound", h.CompleteInbound)
	}
}
