package purchasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

func newTestPurchaseOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder("PO-260828-001", uuid.New(), "Golden Farm",
		"DAILY_FOOD", PurchaseOrderStatusPlaced, ordering.ConfirmationStatusRegular)
	require.NoError(t, err)
	return order
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates placed order", func(t *testing.T) {
		order := newTestPurchaseOrder(t)

		assert.Equal(t, PurchaseOrderStatusPlaced, order.Status)
		assert.Nil(t, order.SmsSuccess)
		assert.Nil(t, order.LedgerID)
		assert.True(t, order.SmsPending())
	})

	t.Run("pre-vetted flow starts confirmed", func(t *testing.T) {
		order, err := NewPurchaseOrder("PO-260828-002", uuid.New(), "Golden Farm",
			"DAILY_FOOD", PurchaseOrderStatusConfirmed, ordering.ConfirmationStatusAdditional)

		require.NoError(t, err)
		assert.Equal(t, PurchaseOrderStatusConfirmed, order.Status)
		assert.NotNil(t, order.ConfirmedAt)
	})

	t.Run("rejects other initial statuses", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-260828-003", uuid.New(), "Golden Farm",
			"DAILY_FOOD", PurchaseOrderStatusCompleted, ordering.ConfirmationStatusRegular)

		require.Error(t, err)
		assert.Equal(t, "INVALID_STATUS", err.(*shared.DomainError).Code)
	})
}

func TestPurchaseOrder_AddItem(t *testing.T) {
	order := newTestPurchaseOrder(t)

	_, err := order.AddItem(uuid.New(), "Chicken", "P-001", "viss",
		decimal.NewFromInt(12), valueobject.NewMoneyMMKFromFloat(2000), 3)
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Onion", "P-002", "viss",
		decimal.NewFromInt(8), valueobject.NewMoneyMMKFromFloat(500), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, order.ItemCount())
	assert.True(t, order.TotalQuantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(28000)))
}

func TestPurchaseOrder_RecordSmsResult(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		order := newTestPurchaseOrder(t)
		sentAt := time.Now()

		order.RecordSmsResult(true, sentAt)

		require.NotNil(t, order.SmsSuccess)
		assert.True(t, *order.SmsSuccess)
		assert.Equal(t, sentAt, *order.LastSmsSentAt)
		assert.False(t, order.SmsPending())
	})

	t.Run("records failure without touching status", func(t *testing.T) {
		order := newTestPurchaseOrder(t)

		order.RecordSmsResult(false, time.Now())

		require.NotNil(t, order.SmsSuccess)
		assert.False(t, *order.SmsSuccess)
		assert.Equal(t, PurchaseOrderStatusPlaced, order.Status)
	})
}

func TestPurchaseOrder_CompleteWithLedger(t *testing.T) {
	t.Run("completes from placed", func(t *testing.T) {
		order := newTestPurchaseOrder(t)
		ledgerID := uuid.New()

		require.NoError(t, order.CompleteWithLedger(ledgerID))

		assert.Equal(t, PurchaseOrderStatusCompleted, order.Status)
		require.NotNil(t, order.LedgerID)
		assert.Equal(t, ledgerID, *order.LedgerID)
		assert.NotNil(t, order.CompletedAt)
	})

	t.Run("second completion is rejected by status", func(t *testing.T) {
		order := newTestPurchaseOrder(t)
		require.NoError(t, order.CompleteWithLedger(uuid.New()))

		err := order.CompleteWithLedger(uuid.New())

		require.Error(t, err)
		assert.Equal(t, "INVALID_STATE", err.(*shared.DomainError).Code)
	})

	t.Run("rejects nil ledger id", func(t *testing.T) {
		order := newTestPurchaseOrder(t)

		err := order.CompleteWithLedger(uuid.Nil)

		require.Error(t, err)
		assert.Equal(t, "INVALID_LEDGER", err.(*shared.DomainError).Code)
	})
}

func TestPurchaseLedger(t *testing.T) {
	order := newTestPurchaseOrder(t)

	t.Run("computes total from lines", func(t *testing.T) {
		lines := []LedgerLine{
			{ProductID: uuid.New(), ProductName: "Chicken", ProductCode: "P-001", Category: "DAILY_FOOD",
				Quantity: decimal.NewFromInt(5), Unit: "viss", UnitPrice: decimal.NewFromInt(100)},
			{ProductID: uuid.New(), ProductName: "Onion", ProductCode: "P-002", Category: "DAILY_FOOD",
				Quantity: decimal.NewFromInt(3), Unit: "viss", UnitPrice: decimal.NewFromInt(200)},
		}

		ledger, err := NewPurchaseLedger("PL-260828-001", order, lines, "store.keeper")

		require.NoError(t, err)
		assert.True(t, ledger.TotalAmount.Equal(decimal.NewFromInt(1100)))
		assert.Equal(t, 2, ledger.ItemCount())
		assert.Equal(t, order.ID, ledger.PurchaseOrderID)
		assert.Equal(t, order.SupplierName, ledger.SupplierName)
	})

	t.Run("rejects missing price", func(t *testing.T) {
		lines := []LedgerLine{
			{ProductID: uuid.New(), ProductName: "Chicken", ProductCode: "P-001", Category: "DAILY_FOOD",
				Quantity: decimal.NewFromInt(5), Unit: "viss", UnitPrice: decimal.Zero},
		}

		_, err := NewPurchaseLedger("PL-260828-002", order, lines, "store.keeper")

		require.Error(t, err)
		assert.Equal(t, "MISSING_PRICE", err.(*shared.DomainError).Code)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		lines := []LedgerLine{
			{ProductID: uuid.New(), ProductName: "Chicken", ProductCode: "P-001", Category: "DAILY_FOOD",
				Quantity: decimal.NewFromInt(-1), Unit: "viss", UnitPrice: decimal.NewFromInt(100)},
		}

		_, err := NewPurchaseLedger("PL-260828-003", order, lines, "store.keeper")

		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", err.(*shared.DomainError).Code)
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		_, err := NewPurchaseLedger("PL-260828-004", order, nil, "store.keeper")

		require.Error(t, err)
		assert.Equal(t, "NO_ITEMS", err.(*shared.DomainError).Code)
	})
}

func TestSupplierAccount(t *testing.T) {
	t.Run("purchase increases balance", func(t *testing.T) {
		account, err := NewSupplierAccount(uuid.New(), "Golden Farm")
		require.NoError(t, err)

		require.NoError(t, account.RecordPurchase(valueobject.NewMoneyMMKFromFloat(1100), time.Now()))

		assert.True(t, account.CurrentBalance.Equal(decimal.NewFromInt(1100)))
		assert.True(t, account.TotalPurchaseAmount.Equal(decimal.NewFromInt(1100)))
		assert.Equal(t, 1, account.TransactionCount)
		assert.NotNil(t, account.LastPurchaseDate)
		assert.True(t, account.CheckInvariant())
	})

	t.Run("payment decreases balance", func(t *testing.T) {
		account, err := NewSupplierAccount(uuid.New(), "Golden Farm")
		require.NoError(t, err)
		require.NoError(t, account.RecordPurchase(valueobject.NewMoneyMMKFromFloat(5000), time.Now()))

		require.NoError(t, account.RecordPayment(valueobject.NewMoneyMMKFromFloat(2000), time.Now()))

		assert.True(t, account.CurrentBalance.Equal(decimal.NewFromInt(3000)))
		assert.Equal(t, 2, account.TransactionCount)
		assert.True(t, account.CheckInvariant())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		account, err := NewSupplierAccount(uuid.New(), "Golden Farm")
		require.NoError(t, err)

		assert.Error(t, account.RecordPurchase(valueobject.ZeroMMK(), time.Now()))
		assert.Error(t, account.RecordPayment(valueobject.NewMoneyMMKFromFloat(-10), time.Now()))
	})
}

func TestDuplicatePurchaseOrderError(t *testing.T) {
	err := &DuplicatePurchaseOrderError{
		ExistingOrderID:     uuid.New(),
		ExistingOrderNumber: "PO-260828-001",
		SupplierName:        "Golden Farm",
	}

	assert.Contains(t, err.Error(), "PO-260828-001")
	assert.Contains(t, err.Error(), "Golden Farm")
	assert.Equal(t, "DUPLICATE_PURCHASE_ORDER", err.Code())
}
