package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apppurchasing "github.com/freshsupply/backend/internal/application/purchasing"
	"github.com/freshsupply/backend/internal/domain/purchasing"
)

// SupplierAccountHandler handles supplier account API endpoints
type SupplierAccountHandler struct {
	BaseHandler
	inbound *apppurchasing.InboundService
}

// NewSupplierAccountHandler creates a new SupplierAccountHandler
func NewSupplierAccountHandler(inbound *apppurchasing.InboundService) *SupplierAccountHandler {
	return &SupplierAccountHandler{inbound: inbound}
}

// RecordPaymentRequest carries a supplier payment
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaidBy string          `json:"paid_by" binding:"required,min=1,max=100"`
}

// SupplierAccountResponse represents a supplier account in API responses
type SupplierAccountResponse struct {
	SupplierID          string          `json:"supplier_id"`
	SupplierName        string          `json:"supplier_name"`
	TotalPurchaseAmount decimal.Decimal `json:"total_purchase_amount"`
	TotalPaidAmount     decimal.Decimal `json:"total_paid_amount"`
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	TransactionCount    int             `json:"transaction_count"`
	LastPurchaseDate    *time.Time      `json:"last_purchase_date,omitempty"`
	LastPaymentDate     *time.Time      `json:"last_payment_date,omitempty"`
}

func toSupplierAccountResponse(account *purchasing.SupplierAccount) SupplierAccountResponse {
	return SupplierAccountResponse{
		SupplierID:          account.SupplierID.String(),
		SupplierName:        account.SupplierName,
		TotalPurchaseAmount: account.TotalPurchaseAmount,
		TotalPaidAmount:     account.TotalPaidAmount,
		CurrentBalance:      account.CurrentBalance,
		TransactionCount:    account.TransactionCount,
		LastPurchaseDate:    account.LastPurchaseDate,
		LastPaymentDate:     account.LastPaymentDate,
	}
}

// GetAccount returns the running account balance for a supplier
func (h *SupplierAccountHandler) GetAccount(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	account, err := h.inbound.GetSupplierAccount(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierAccountResponse(account))
}

// RecordPayment records a payment against a supplier balance
func (h *SupplierAccountHandler) RecordPayment(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.inbound.RecordPayment(c.Request.Context(), supplierID, req.Amount, req.PaidBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers supplier account routes
func (h *SupplierAccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("/:id/account", h.GetAccount)
		suppliers.POST("/:id/payments", h.RecordPayment)
	}
}
