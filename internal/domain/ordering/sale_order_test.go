package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

func newTestOrder(t *testing.T) *SaleOrder {
	t.Helper()
	order, err := NewSaleOrder("SO-260828-001", uuid.New(), "Daw Mya", "DAILY_FOOD",
		SaleOrderStatusPlaced, ConfirmationStatusRegular, CutoffStatusWithin)
	require.NoError(t, err)
	return order
}

func TestNewSaleOrder(t *testing.T) {
	t.Run("creates placed regular order", func(t *testing.T) {
		order := newTestOrder(t)

		assert.Equal(t, SaleOrderStatusPlaced, order.Status)
		assert.Equal(t, ConfirmationStatusRegular, order.ConfirmationStatus)
		assert.Equal(t, CutoffStatusWithin, order.CutoffStatus)
		assert.False(t, order.PlacedAt.IsZero())
		assert.Nil(t, order.ConfirmedAt)
	})

	t.Run("additional order created already confirmed", func(t *testing.T) {
		order, err := NewSaleOrder("SO-260828-002", uuid.New(), "U Ba", "DAILY_FOOD",
			SaleOrderStatusConfirmed, ConfirmationStatusAdditional, CutoffStatusAfter)

		require.NoError(t, err)
		assert.Equal(t, SaleOrderStatusConfirmed, order.Status)
		assert.True(t, order.IsAdditional())
		assert.NotNil(t, order.ConfirmedAt)
	})

	t.Run("validates required fields", func(t *testing.T) {
		tests := []struct {
			name        string
			orderNumber string
			customerID  uuid.UUID
			customer    string
			category    string
			wantCode    string
		}{
			{"empty order number", "", uuid.New(), "x", "DAILY_FOOD", "INVALID_ORDER_NUMBER"},
			{"nil customer", "SO-1", uuid.Nil, "x", "DAILY_FOOD", "INVALID_CUSTOMER"},
			{"empty customer name", "SO-1", uuid.New(), "", "DAILY_FOOD", "INVALID_CUSTOMER_NAME"},
			{"empty category", "SO-1", uuid.New(), "x", "", "INVALID_CATEGORY"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewSaleOrder(tt.orderNumber, tt.customerID, tt.customer, tt.category,
					SaleOrderStatusPlaced, ConfirmationStatusRegular, CutoffStatusWithin)
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, err.(*shared.DomainError).Code)
			})
		}
	})
}

func TestSaleOrder_AddItem(t *testing.T) {
	t.Run("adds items and recalculates total", func(t *testing.T) {
		order := newTestOrder(t)

		_, err := order.AddItem(uuid.New(), "Chicken", "P-001", "viss",
			decimal.NewFromInt(5), valueobject.NewMoneyMMKFromFloat(2000))
		require.NoError(t, err)
		_, err = order.AddItem(uuid.New(), "Onion", "P-002", "viss",
			decimal.NewFromInt(3), valueobject.NewMoneyMMKFromFloat(1000))
		require.NoError(t, err)

		assert.Equal(t, 2, order.ItemCount())
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(13000)))
	})

	t.Run("rejects duplicate product", func(t *testing.T) {
		order := newTestOrder(t)
		productID := uuid.New()
		_, err := order.AddItem(productID, "Chicken", "P-001", "viss",
			decimal.NewFromInt(5), valueobject.NewMoneyMMKFromFloat(2000))
		require.NoError(t, err)

		_, err = order.AddItem(productID, "Chicken", "P-001", "viss",
			decimal.NewFromInt(2), valueobject.NewMoneyMMKFromFloat(2000))

		require.Error(t, err)
		assert.Equal(t, "DUPLICATE_PRODUCT", err.(*shared.DomainError).Code)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		order := newTestOrder(t)

		_, err := order.AddItem(uuid.New(), "Chicken", "P-001", "viss",
			decimal.Zero, valueobject.NewMoneyMMKFromFloat(2000))

		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", err.(*shared.DomainError).Code)
	})
}

func TestSaleOrder_Transitions(t *testing.T) {
	t.Run("confirm from placed", func(t *testing.T) {
		order := newTestOrder(t)

		require.NoError(t, order.Confirm())

		assert.Equal(t, SaleOrderStatusConfirmed, order.Status)
		assert.NotNil(t, order.ConfirmedAt)
	})

	t.Run("confirm is idempotent", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Confirm())
		firstConfirmedAt := *order.ConfirmedAt

		require.NoError(t, order.Confirm())

		assert.Equal(t, firstConfirmedAt, *order.ConfirmedAt)
	})

	t.Run("confirm stamps unset classification as regular", func(t *testing.T) {
		order := newTestOrder(t)
		order.ConfirmationStatus = ConfirmationStatusUnset

		require.NoError(t, order.Confirm())

		assert.Equal(t, ConfirmationStatusRegular, order.ConfirmationStatus)
	})

	t.Run("pend then reject", func(t *testing.T) {
		order := newTestOrder(t)

		require.NoError(t, order.Pend())
		assert.Equal(t, SaleOrderStatusPended, order.Status)
		assert.NotNil(t, order.PendedAt)

		require.NoError(t, order.Reject("out of stock"))
		assert.Equal(t, SaleOrderStatusRejected, order.Status)
		assert.Equal(t, "out of stock", order.RejectReason)
	})

	t.Run("reject requires reason", func(t *testing.T) {
		order := newTestOrder(t)

		err := order.Reject("")

		require.Error(t, err)
		assert.Equal(t, "INVALID_REASON", err.(*shared.DomainError).Code)
	})

	t.Run("cannot confirm a rejected order", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Reject("bad"))

		err := order.Confirm()

		require.Error(t, err)
		assert.Equal(t, "INVALID_STATE", err.(*shared.DomainError).Code)
	})

	t.Run("complete only from confirmed", func(t *testing.T) {
		order := newTestOrder(t)
		require.Error(t, order.Complete())

		require.NoError(t, order.Confirm())
		require.NoError(t, order.Complete())
		assert.Equal(t, SaleOrderStatusCompleted, order.Status)
	})
}

func TestSaleOrder_CanDelete(t *testing.T) {
	order := newTestOrder(t)
	assert.False(t, order.CanDelete())

	require.NoError(t, order.Pend())
	assert.True(t, order.CanDelete())
}

func TestSaleOrderStatus_IsActive(t *testing.T) {
	assert.True(t, SaleOrderStatusPlaced.IsActive())
	assert.True(t, SaleOrderStatusConfirmed.IsActive())
	assert.True(t, SaleOrderStatusPended.IsActive())
	assert.False(t, SaleOrderStatusRejected.IsActive())
	assert.False(t, SaleOrderStatusCancelled.IsActive())
	assert.False(t, SaleOrderStatusCompleted.IsActive())
}
