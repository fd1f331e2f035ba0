package cutoff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/application/aggregation"
	apppurchasing "github.com/freshsupply/backend/internal/application/purchasing"
	"github.com/freshsupply/backend/internal/domain/catalog"
	"github.com/freshsupply/backend/internal/domain/cutoff"
	"github.com/freshsupply/backend/internal/domain/numbering"
	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/partner"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

const testCategory = "DAILY_FOOD"

// ============================================================================
// Mocks
// ============================================================================

type MockCycleRepository struct {
	mock.Mock
}

func (m *MockCycleRepository) Get(ctx context.Context) (*cutoff.Cycle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cutoff.Cycle), args.Error(1)
}

func (m *MockCycleRepository) Save(ctx context.Context, cycle *cutoff.Cycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

type MockWindowRepository struct {
	mock.Mock
}

func (m *MockWindowRepository) Get(ctx context.Context) (*cutoff.Window, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cutoff.Window), args.Error(1)
}

func (m *MockWindowRepository) Save(ctx context.Context, window *cutoff.Window) error {
	args := m.Called(ctx, window)
	return args.Error(0)
}

type MockSaleOrderRepository struct {
	mock.Mock
}

func (m *MockSaleOrderRepository) Save(ctx context.Context, order *ordering.SaleOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSaleOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.SaleOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.SaleOrder), args.Error(1)
}

func (m *MockSaleOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.SaleOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.SaleOrder), args.Error(1)
}

func (m *MockSaleOrderRepository) FindActiveSince(ctx context.Context, category string, since time.Time) ([]*ordering.SaleOrder, error) {
	args := m.Called(ctx, category, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ordering.SaleOrder), args.Error(1)
}

func (m *MockSaleOrderRepository) FindPlacedBetween(ctx context.Context, from, to time.Time) ([]*ordering.SaleOrder, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ordering.SaleOrder), args.Error(1)
}

func (m *MockSaleOrderRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*ordering.SaleOrder], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*ordering.SaleOrder]), args.Error(1)
}

func (m *MockSaleOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*catalog.Product]), args.Error(1)
}

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*partner.Supplier, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*partner.Supplier], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*partner.Supplier]), args.Error(1)
}

type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindBySupplierCategoryPlacedBetween(ctx context.Context, supplierID uuid.UUID, category string, from, to time.Time) ([]*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, supplierID, category, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*purchasing.PurchaseOrder], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*purchasing.PurchaseOrder]), args.Error(1)
}

type MockSequenceGenerator struct {
	mock.Mock
}

func (m *MockSequenceGenerator) Next(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

type MockLockStore struct {
	mock.Mock
}

func (m *MockLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// ============================================================================
// Fixtures
// ============================================================================

type cycleFixture struct {
	cycles     *MockCycleRepository
	saleOrders *MockSaleOrderRepository
	products   *MockProductRepository
	suppliers  *MockSupplierRepository
	poOrders   *MockPurchaseOrderRepository
	sequence   *MockSequenceGenerator
	locks      *MockLockStore
	service    *CycleService
}

func newCycleFixture() *cycleFixture {
	f := &cycleFixture{
		cycles:     new(MockCycleRepository),
		saleOrders: new(MockSaleOrderRepository),
		products:   new(MockProductRepository),
		suppliers:  new(MockSupplierRepository),
		poOrders:   new(MockPurchaseOrderRepository),
		sequence:   new(MockSequenceGenerator),
		locks:      new(MockLockStore),
	}
	logger := zap.NewNop()
	engine := aggregation.NewEngine(f.saleOrders, f.products, f.suppliers, logger)
	generator := apppurchasing.NewGenerator(f.poOrders, f.suppliers, f.cycles, f.sequence, logger)
	f.service = NewCycleService(f.cycles, f.saleOrders, engine, generator, f.locks, testCategory, logger)
	return f
}

func placedOrder(t *testing.T, number string, productID uuid.UUID) *ordering.SaleOrder {
	t.Helper()
	order, err := ordering.NewSaleOrder(number, uuid.New(), "Daw Mya", testCategory,
		ordering.SaleOrderStatusPlaced, ordering.ConfirmationStatusRegular, ordering.CutoffStatusWithin)
	require.NoError(t, err)
	_, err = order.AddItem(productID, "Chicken Breast", "CHK-001", "kg",
		decimal.NewFromInt(3), valueobject.NewMoneyMMK(decimal.NewFromInt(1500)))
	require.NoError(t, err)
	return order
}

// ============================================================================
// GetStatus / OrderCreationData
// ============================================================================

func TestCycleService_GetStatus_DefaultsBeforeFirstConfirmation(t *testing.T) {
	f := newCycleFixture()
	f.cycles.On("Get", mock.Anything).Return(nil, shared.ErrNotFound)

	status, err := f.service.GetStatus(context.Background())
	require.NoError(t, err)

	assert.False(t, status.IsConfirmed)
	assert.Equal(t, cutoff.StartOfToday(), status.ResetAt)
	assert.Nil(t, status.LastConfirmedAt)
}

func TestCycleService_OrderCreationData(t *testing.T) {
	t.Run("unconfirmed cycle places regular orders", func(t *testing.T) {
		f := newCycleFixture()
		f.cycles.On("Get", mock.Anything).Return(cutoff.NewCycle(), nil)

		data, err := f.service.OrderCreationData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ordering.SaleOrderStatusPlaced, data.Status)
		assert.Equal(t, ordering.ConfirmationStatusRegular, data.Confirmation)
	})

	t.Run("confirmed cycle places additional confirmed orders", func(t *testing.T) {
		f := newCycleFixture()
		cycle := cutoff.NewCycle()
		cycle.Confirm("admin")
		f.cycles.On("Get", mock.Anything).Return(cycle, nil)

		data, err := f.service.OrderCreationData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ordering.SaleOrderStatusConfirmed, data.Status)
		assert.Equal(t, ordering.ConfirmationStatusAdditional, data.Confirmation)
	})
}

// ============================================================================
// Confirm
// ============================================================================

func TestCycleService_Confirm_RejectedWhileAnotherConfirmRuns(t *testing.T) {
	f := newCycleFixture()
	f.locks.On("Acquire", mock.Anything, "cycle:confirm", mock.Anything).Return(false, nil)

	_, err := f.service.Confirm(context.Background(), "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrOperationInProgress)
	f.cycles.AssertNotCalled(t, "Get", mock.Anything)
}

func TestCycleService_Confirm_PromotesRegularOrdersAndConfirmsCycle(t *testing.T) {
	f := newCycleFixture()

	productID := uuid.New()
	regular1 := placedOrder(t, "SO-260828-001", productID)
	regular2 := placedOrder(t, "SO-260828-002", productID)
	additional, err := ordering.NewSaleOrder("SO-260828-003", uuid.New(), "Daw Mya", testCategory,
		ordering.SaleOrderStatusConfirmed, ordering.ConfirmationStatusAdditional, ordering.CutoffStatusWithin)
	require.NoError(t, err)

	cycle := cutoff.NewCycle()
	f.locks.On("Acquire", mock.Anything, "cycle:confirm", mock.Anything).Return(true, nil)
	f.locks.On("Release", mock.Anything, "cycle:confirm").Return(nil)
	f.cycles.On("Get", mock.Anything).Return(cycle, nil)
	f.cycles.On("Save", mock.Anything, cycle).Return(nil)
	f.saleOrders.On("FindPlacedBetween", mock.Anything, cycle.ResetAt, mock.Anything).
		Return([]*ordering.SaleOrder{regular1, regular2, additional}, nil)
	f.saleOrders.On("Save", mock.Anything, regular1).Return(nil)
	f.saleOrders.On("Save", mock.Anything, regular2).Return(nil)

	// aggregation for generation finds nothing outstanding
	f.saleOrders.On("FindActiveSince", mock.Anything, testCategory, cycle.ResetAt).
		Return([]*ordering.SaleOrder{}, nil)

	result, err := f.service.Confirm(context.Background(), "admin")
	require.NoError(t, err)

	assert.Equal(t, 2, result.ConfirmedOrders)
	assert.Equal(t, 0, result.FailedOrders)
	assert.Empty(t, result.Generated)

	assert.Equal(t, ordering.SaleOrderStatusConfirmed, regular1.Status)
	assert.Equal(t, ordering.SaleOrderStatusConfirmed, regular2.Status)
	// the pre-confirmed additional order is untouched
	f.saleOrders.AssertNotCalled(t, "Save", mock.Anything, additional)

	require.NotNil(t, result.Cycle)
	assert.True(t, result.Cycle.IsConfirmed)
	assert.Equal(t, "admin", result.Cycle.ConfirmedBy)
	require.NotNil(t, result.Cycle.AutoResetScheduledAt)
	assert.WithinDuration(t, time.Now().Add(cutoff.AutoResetDelay), *result.Cycle.AutoResetScheduledAt, 5*time.Second)
}

func TestCycleService_Confirm_GeneratesForSuppliersWithQuantity(t *testing.T) {
	f := newCycleFixture()

	supplier, err := partner.NewSupplier("SUP-001", "Golden Farm")
	require.NoError(t, err)
	supplier.UpdateContact("U Ba", "0911111111", "")
	product, err := catalog.NewProduct("CHK-001", "Chicken Breast", testCategory, supplier.ID, "kg",
		valueobject.NewMoneyMMK(decimal.NewFromInt(1500)), valueobject.NewMoneyMMK(decimal.NewFromInt(1000)))
	require.NoError(t, err)

	order := placedOrder(t, "SO-260828-010", product.ID)

	cycle := cutoff.NewCycle()
	f.locks.On("Acquire", mock.Anything, "cycle:confirm", mock.Anything).Return(true, nil)
	f.locks.On("Release", mock.Anything, "cycle:confirm").Return(nil)
	f.cycles.On("Get", mock.Anything).Return(cycle, nil)
	f.cycles.On("Save", mock.Anything, cycle).Return(nil)
	f.saleOrders.On("FindPlacedBetween", mock.Anything, cycle.ResetAt, mock.Anything).
		Return([]*ordering.SaleOrder{order}, nil)
	f.saleOrders.On("Save", mock.Anything, order).Return(nil)
	f.saleOrders.On("FindActiveSince", mock.Anything, testCategory, cycle.ResetAt).
		Return([]*ordering.SaleOrder{order}, nil)
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]*catalog.Product{product}, nil)
	f.suppliers.On("FindByIDs", mock.Anything, mock.Anything).Return([]*partner.Supplier{supplier}, nil)
	f.suppliers.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	f.sequence.On("Next", mock.Anything, numbering.PrefixPurchaseOrder).Return("PO-260828-001", nil)
	f.poOrders.On("Save", mock.Anything, mock.AnythingOfType("*purchasing.PurchaseOrder")).Return(nil)

	result, err := f.service.Confirm(context.Background(), "admin")
	require.NoError(t, err)

	require.Len(t, result.Generated, 1)
	assert.Equal(t, purchasing.PurchaseOrderStatusConfirmed, result.Generated[0].Status)
	assert.Equal(t, "Golden Farm", result.Generated[0].SupplierName)
}

// ============================================================================
// Reset / RunAutoReset
// ============================================================================

func TestCycleService_Reset(t *testing.T) {
	f := newCycleFixture()

	cycle := cutoff.NewCycle()
	cycle.Confirm("admin")
	f.cycles.On("Get", mock.Anything).Return(cycle, nil)
	f.cycles.On("Save", mock.Anything, cycle).Return(nil)

	status, err := f.service.Reset(context.Background())
	require.NoError(t, err)

	assert.False(t, status.IsConfirmed)
	assert.Nil(t, status.AutoResetScheduledAt)
	assert.WithinDuration(t, time.Now(), status.ResetAt, 5*time.Second)
}

func TestCycleService_RunAutoReset(t *testing.T) {
	t.Run("not due leaves the cycle alone", func(t *testing.T) {
		f := newCycleFixture()
		cycle := cutoff.NewCycle()
		cycle.Confirm("admin")
		f.cycles.On("Get", mock.Anything).Return(cycle, nil)

		require.NoError(t, f.service.RunAutoReset(context.Background()))
		f.cycles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.True(t, cycle.IsConfirmed)
	})

	t.Run("due resets the cycle", func(t *testing.T) {
		f := newCycleFixture()
		cycle := cutoff.NewCycle()
		cycle.Confirm("admin")
		past := time.Now().Add(-time.Minute)
		cycle.AutoResetScheduledAt = &past
		f.cycles.On("Get", mock.Anything).Return(cycle, nil)
		f.cycles.On("Save", mock.Anything, cycle).Return(nil)

		require.NoError(t, f.service.RunAutoReset(context.Background()))
		assert.False(t, cycle.IsConfirmed)
		assert.Nil(t, cycle.AutoResetScheduledAt)
	})

	t.Run("missing cycle is a no-op", func(t *testing.T) {
		f := newCycleFixture()
		f.cycles.On("Get", mock.Anything).Return(nil, shared.ErrNotFound)
		require.NoError(t, f.service.RunAutoReset(context.Background()))
	})
}
