package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/numbering"
	"github.com/freshsupply/backend/internal/domain/partner"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
	"github.com/freshsupply/backend/internal/infrastructure/telemetry"
)

// InboundItem is one operator-entered received line.
// UnitPrice is optional; when nil the ordered reference price is used.
type InboundItem struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"gte=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// InboundResult reports the committed reconciliation
type InboundResult struct {
	LedgerID     uuid.UUID       `json:"ledger_id"`
	LedgerNumber string          `json:"ledger_number"`
	OrderNumber  string          `json:"order_number"`
	SupplierName string          `json:"supplier_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ItemCount    int             `json:"item_count"`
	ReceivedAt   time.Time       `json:"received_at"`
}

// PaymentResult reports a recorded supplier payment
type PaymentResult struct {
	PaymentNumber  string          `json:"payment_number"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	Amount         decimal.Decimal `json:"amount"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// InboundService reconciles received goods into the immutable ledger.
// The ledger write, order completion, product price update, and account
// balance update run in one transaction through the unit of work.
type InboundService struct {
	orders          purchasing.PurchaseOrderRepository
	accounts        purchasing.SupplierAccountRepository
	suppliers       partner.SupplierRepository
	uow             purchasing.UnitOfWork
	sequence        numbering.Generator
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewInboundService creates a new inbound reconciliation service
func NewInboundService(orders purchasing.PurchaseOrderRepository, accounts purchasing.SupplierAccountRepository, suppliers partner.SupplierRepository, uow purchasing.UnitOfWork, sequence numbering.Generator, logger *zap.Logger) *InboundService {
	return &InboundService{
		orders:    orders,
		accounts:  accounts,
		suppliers: suppliers,
		uow:       uow,
		sequence:  sequence,
		logger:    logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *InboundService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// CompleteInbound reconciles a delivery against a purchase order.
// The order is loaded outside the transaction for early validation; the
// transaction then re-reads every participating row before any write.
func (s *InboundService) CompleteInbound(ctx context.Context, orderNumber string, items []InboundItem, receivedBy string) (*InboundResult, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Inbound items cannot be empty")
	}
	if receivedBy == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "ReceivedBy cannot be empty")
	}
	for _, item := range items {
		if item.Quantity.IsNegative() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative")
		}
		if item.UnitPrice != nil && item.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("MISSING_PRICE", "Received unit price must be positive")
		}
	}

	// early check; re-validated on the in-transaction read
	preflight, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !preflight.Status.CanReceiveInbound() {
		return nil, shared.NewDomainError("INVALID_STATE", "Purchase order is not inbound-eligible")
	}

	ledgerNumber, err := s.sequence.Next(ctx, numbering.PrefixPurchaseLedger)
	if err != nil {
		return nil, err
	}

	var result *InboundResult
	err = s.uow.Execute(ctx, func(ctx context.Context, repos purchasing.InboundRepositories) error {
		// reads first: order, products, account. Writes only after all
		// reads are done.
		order, err := repos.Orders.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return err
		}
		if !order.Status.CanReceiveInbound() {
			return shared.NewDomainError("INVALID_STATE", "Purchase order is not inbound-eligible")
		}

		productIDs := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := repos.Products.FindByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		productsByID := make(map[uuid.UUID]int, len(products))
		for i, p := range products {
			productsByID[p.ID] = i
		}

		account, err := repos.Accounts.FindBySupplierID(ctx, order.SupplierID)
		if err != nil {
			if !shared.IsNotFound(err) {
				return err
			}
			account, err = purchasing.NewSupplierAccount(order.SupplierID, order.SupplierName)
			if err != nil {
				return err
			}
		}

		lines := make([]purchasing.LedgerLine, 0, len(items))
		for _, item := range items {
			orderItem := order.GetItemByProduct(item.ProductID)
			if orderItem == nil {
				return shared.NewDomainError("ITEM_NOT_FOUND", "Product not found in purchase order")
			}

			// actual price falls back to the ordered reference price
			unitPrice := orderItem.UnitPrice
			if item.UnitPrice != nil {
				unitPrice = *item.UnitPrice
			}
			if unitPrice.LessThanOrEqual(decimal.Zero) {
				return shared.NewDomainError("MISSING_PRICE", "No positive price available for product")
			}

			category := order.Category
			code := orderItem.ProductCode
			if idx, ok := productsByID[item.ProductID]; ok {
				product := products[idx]
				category = product.Category
				code = product.Code
				if err := product.UpdatePurchasePrice(valueobject.NewMoneyMMK(unitPrice)); err != nil {
					return err
				}
			}

			lines = append(lines, purchasing.LedgerLine{
				ProductID:   item.ProductID,
				ProductName: orderItem.ProductName,
				ProductCode: code,
				Category:    category,
				Quantity:    item.Quantity,
				Unit:        orderItem.Unit,
				UnitPrice:   unitPrice,
			})
		}

		ledger, err := purchasing.NewPurchaseLedger(ledgerNumber, order, lines, receivedBy)
		if err != nil {
			return err
		}

		if err := repos.Ledgers.Create(ctx, ledger); err != nil {
			return err
		}

		if err := order.CompleteWithLedger(ledger.ID); err != nil {
			return err
		}
		if err := repos.Orders.Save(ctx, order); err != nil {
			return err
		}

		for _, product := range products {
			if err := repos.Products.Save(ctx, product); err != nil {
				return err
			}
		}

		if err := account.RecordPurchase(ledger.GetTotalAmountMoney(), ledger.ReceivedAt); err != nil {
			return err
		}
		if err := repos.Accounts.Save(ctx, account); err != nil {
			return err
		}

		result = &InboundResult{
			LedgerID:     ledger.ID,
			LedgerNumber: ledger.LedgerNumber,
			OrderNumber:  order.OrderNumber,
			SupplierName: order.SupplierName,
			TotalAmount:  ledger.TotalAmount,
			ItemCount:    ledger.ItemCount(),
			ReceivedAt:   ledger.ReceivedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inbound reconciliation committed",
		zap.String("order_number", result.OrderNumber),
		zap.String("ledger_number", result.LedgerNumber),
		zap.String("total_amount", result.TotalAmount.String()),
		zap.String("received_by", receivedBy))

	if s.businessMetrics != nil {
		s.businessMetrics.RecordLedgerWritten(ctx, result.SupplierName, result.TotalAmount)
	}

	return result, nil
}

// RecordPayment records a payment to a supplier, decrementing the
// running balance inside one transaction.
func (s *InboundService) RecordPayment(ctx context.Context, supplierID uuid.UUID, amount decimal.Decimal, paidBy string) (*PaymentResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paidBy == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "PaidBy cannot be empty")
	}

	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
		}
		return nil, err
	}

	paymentNumber, err := s.sequence.Next(ctx, numbering.PrefixPayment)
	if err != nil {
		return nil, err
	}

	var result *PaymentResult
	err = s.uow.Execute(ctx, func(ctx context.Context, repos purchasing.InboundRepositories) error {
		account, err := repos.Accounts.FindBySupplierID(ctx, supplierID)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewDomainError("NOT_FOUND", "Supplier has no account to pay against")
			}
			return err
		}

		if err := account.RecordPayment(valueobject.NewMoneyMMK(amount), time.Now()); err != nil {
			return err
		}
		if err := repos.Accounts.Save(ctx, account); err != nil {
			return err
		}

		result = &PaymentResult{
			PaymentNumber:  paymentNumber,
			SupplierID:     supplierID,
			Amount:         amount,
			CurrentBalance: account.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("supplier payment recorded",
		zap.String("payment_number", result.PaymentNumber),
		zap.String("supplier", supplier.Name),
		zap.String("amount", amount.String()))

	return result, nil
}

// GetSupplierAccount returns the account view for a supplier, or a
// zeroed account when no purchases were ever reconciled.
func (s *InboundService) GetSupplierAccount(ctx context.Context, supplierID uuid.UUID) (*purchasing.SupplierAccount, error) {
	account, err := s.accounts.FindBySupplierID(ctx, supplierID)
	if err == nil {
		return account, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	return purchasing.NewSupplierAccount(supplier.ID, supplier.Name)
}
