package purchasing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/catalog"
	"github.com/freshsupply/backend/internal/domain/numbering"
	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

// ============================================================================
// Mocks
// ============================================================================

type MockPurchaseLedgerRepository struct {
	mock.Mock
}

func (m *MockPurchaseLedgerRepository) Create(ctx context.Context, ledger *purchasing.PurchaseLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockPurchaseLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseLedger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseLedger), args.Error(1)
}

func (m *MockPurchaseLedgerRepository) FindByPurchaseOrderID(ctx context.Context, orderID uuid.UUID) ([]*purchasing.PurchaseLedger, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*purchasing.PurchaseLedger), args.Error(1)
}

func (m *MockPurchaseLedgerRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*purchasing.PurchaseLedger], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*purchasing.PurchaseLedger]), args.Error(1)
}

type MockSupplierAccountRepository struct {
	mock.Mock
}

func (m *MockSupplierAccountRepository) Save(ctx context.Context, account *purchasing.SupplierAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockSupplierAccountRepository) FindBySupplierID(ctx context.Context, supplierID uuid.UUID) (*purchasing.SupplierAccount, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.SupplierAccount), args.Error(1)
}

func (m *MockSupplierAccountRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*purchasing.SupplierAccount], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*purchasing.SupplierAccount]), args.Error(1)
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

// fakeUnitOfWork passes the bound repositories straight through, so the
// in-transaction path is exercised without a database.
type fakeUnitOfWork struct {
	repos purchasing.InboundRepositories
}

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos purchasing.InboundRepositories) error) error {
	return fn(ctx, f.repos)
}

// ============================================================================
// Fixtures
// ============================================================================

type inboundFixture struct {
	orders    *MockPurchaseOrderRepository
	ledgers   *MockPurchaseLedgerRepository
	accounts  *MockSupplierAccountRepository
	products  *MockProductRepository
	suppliers *MockSupplierRepository
	sequence  *MockSequenceGenerator
	service   *InboundService

	order   *purchasing.PurchaseOrder
	product *catalog.Product
}

func newInboundFixture(t *testing.T) *inboundFixture {
	t.Helper()

	f := &inboundFixture{
		orders:    new(MockPurchaseOrderRepository),
		ledgers:   new(MockPurchaseLedgerRepository),
		accounts:  new(MockSupplierAccountRepository),
		products:  new(MockProductRepository),
		suppliers: new(MockSupplierRepository),
		sequence:  new(MockSequenceGenerator),
	}

	uow := &fakeUnitOfWork{repos: purchasing.InboundRepositories{
		Orders:   f.orders,
		Ledgers:  f.ledgers,
		Accounts: f.accounts,
		Products: f.products,
	}}
	f.service = NewInboundService(f.orders, f.accounts, f.suppliers, uow, f.sequence, zap.NewNop())

	supplierID := uuid.New()
	product, err := catalog.NewProduct("CHK-001", "Chicken Breast", "DAILY_FOOD", supplierID, "kg",
		valueobject.NewMoneyMMK(decimal.NewFromInt(1500)), valueobject.NewMoneyMMK(decimal.NewFromInt(1000)))
	require.NoError(t, err)
	f.product = product

	order, err := purchasing.NewPurchaseOrder("PO-260828-001", supplierID, "Golden Farm",
		"DAILY_FOOD", purchasing.PurchaseOrderStatusConfirmed, ordering.ConfirmationStatusRegular)
	require.NoError(t, err)
	_, err = order.AddItem(product.ID, product.Name, product.Code, product.Unit,
		decimal.NewFromInt(10), valueobject.NewMoneyMMK(decimal.NewFromInt(1000)), 2)
	require.NoError(t, err)
	f.order = order

	return f
}

// ============================================================================
// CompleteInbound
// ============================================================================

func TestInboundService_CompleteInbound_Success(t *testing.T) {
	f := newInboundFixture(t)

	price := decimal.NewFromInt(1100)
	items := []InboundItem{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(9), UnitPrice: &price}}

	f.orders.On("FindByOrderNumber", mock.Anything, "PO-260828-001").Return(f.order, nil)
	f.sequence.On("Next", mock.Anything, numbering.PrefixPurchaseLedger).Return("PL-260828-001", nil)
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{f.product.ID}).Return([]*catalog.Product{f.product}, nil)
	f.accounts.On("FindBySupplierID", mock.Anything, f.order.SupplierID).Return(nil, shared.ErrNotFound)
	f.ledgers.On("Create", mock.Anything, mock.AnythingOfType("*purchasing.PurchaseLedger")).Return(nil)
	f.orders.On("Save", mock.Anything, f.order).Return(nil)
	f.products.On("Save", mock.Anything, f.product).Return(nil)
	f.accounts.On("Save", mock.Anything, mock.AnythingOfType("*purchasing.SupplierAccount")).Return(nil)

	result, err := f.service.CompleteInbound(context.Background(), "PO-260828-001", items, "warehouse")
	require.NoError(t, err)

	assert.Equal(t, "PL-260828-001", result.LedgerNumber)
	// 9 received at the actual price of 1100
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(9900)), "got %s", result.TotalAmount)
	assert.Equal(t, 1, result.ItemCount)

	// order completed and linked to the ledger
	assert.Equal(t, purchasing.PurchaseOrderStatusCompleted, f.order.Status)
	require.NotNil(t, f.order.LedgerID)
	assert.Equal(t, result.LedgerID, *f.order.LedgerID)

	// catalog price follows the received price
	assert.True(t, f.product.PurchasePrice.Equal(price))

	// a fresh account was opened and credited
	savedAccount := f.accounts.Calls[len(f.accounts.Calls)-1].Arguments.Get(1).(*purchasing.SupplierAccount)
	assert.True(t, savedAccount.CurrentBalance.Equal(decimal.NewFromInt(9900)))
	assert.True(t, savedAccount.CheckInvariant())
}

func TestInboundService_CompleteInbound_PriceFallsBackToOrder(t *testing.T) {
	f := newInboundFixture(t)

	items := []InboundItem{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(10)}}

	f.orders.On("FindByOrderNumber", mock.Anything, "PO-260828-001").Return(f.order, nil)
	f.sequence.On("Next", mock.Anything, numbering.PrefixPurchaseLedger).Return("PL-260828-002", nil)
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{f.product.ID}).Return([]*catalog.Product{f.product}, nil)
	f.accounts.On("FindBySupplierID", mock.Anything, f.order.SupplierID).Return(nil, shared.ErrNotFound)
	f.ledgers.On("Create", mock.Anything, mock.AnythingOfType("*purchasing.PurchaseLedger")).Return(nil)
	f.orders.On("Save", mock.Anything, f.order).Return(nil)
	f.products.On("Save", mock.Anything, f.product).Return(nil)
	f.accounts.On("Save", mock.Anything, mock.AnythingOfType("*purchasing.SupplierAccount")).Return(nil)

	result, err := f.service.CompleteInbound(context.Background(), "PO-260828-001", items, "warehouse")
	require.NoError(t, err)

	// 10 received at the ordered reference price of 1000
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(10000)), "got %s", result.TotalAmount)
}

func TestInboundService_CompleteInbound_ValidationErrors(t *testing.T) {
	f := newInboundFixture(t)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name       string
		items      []InboundItem
		receivedBy string
		wantCode   string
	}{
		{"empty items", nil, "warehouse", "NO_ITEMS"},
		{"missing actor", []InboundItem{{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)}}, "", "INVALID_ACTOR"},
		{"negative quantity", []InboundItem{{ProductID: uuid.New(), Quantity: negative}}, "warehouse", "INVALID_QUANTITY"},
		{"non-positive price", []InboundItem{{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1), UnitPrice: &negative}}, "warehouse", "MISSING_PRICE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CompleteInbound(context.Background(), "PO-260828-001", tt.items, tt.receivedBy)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestInboundService_CompleteInbound_RejectsCompletedOrder(t *testing.T) {
	f := newInboundFixture(t)
	require.NoError(t, f.order.CompleteWithLedger(uuid.New()))

	f.orders.On("FindByOrderNumber", mock.Anything, "PO-260828-001").Return(f.order, nil)

	_, err := f.service.CompleteInbound(context.Background(), "PO-260828-001",
		[]InboundItem{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(1)}}, "warehouse")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	f.sequence.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestInboundService_CompleteInbound_LedgerFailureAbortsTransaction(t *testing.T) {
	f := newInboundFixture(t)

	items := []InboundItem{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(5)}}

	f.orders.On("FindByOrderNumber", mock.Anything, "PO-260828-001").Return(f.order, nil)
	f.sequence.On("Next", mock.Anything, numbering.PrefixPurchaseLedger).Return("PL-260828-003", nil)
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{f.product.ID}).Return([]*catalog.Product{f.product}, nil)
	f.accounts.On("FindBySupplierID", mock.Anything, f.order.SupplierID).Return(nil, shared.ErrNotFound)
	f.ledgers.On("Create", mock.Anything, mock.AnythingOfType("*purchasing.PurchaseLedger")).
		Return(errors.New("disk full"))

	_, err := f.service.CompleteInbound(context.Background(), "PO-260828-001", items, "warehouse")
	require.Error(t, err)

	// nothing after the failed ledger write ran
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInboundService_CompleteInbound_UnknownProductInDelivery(t *testing.T) {
	f := newInboundFixture(t)
	ghostID := uuid.New()

	f.orders.On("FindByOrderNumber", mock.Anything, "PO-260828-001").Return(f.order, nil)
	f.sequence.On("Next", mock.Anything, numbering.PrefixPurchaseLedger).Return("PL-260828-004", nil)
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{ghostID}).Return([]*catalog.Product{}, nil)
	f.accounts.On("FindBySupplierID", mock.Anything, f.order.SupplierID).Return(nil, shared.ErrNotFound)

	_, err := f.service.CompleteInbound(context.Background(), "PO-260828-001",
		[]InboundItem{{ProductID: ghostID, Quantity: decimal.NewFromInt(1)}}, "warehouse")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ITEM_NOT_FOUND", domainErr.Code)
	f.ledgers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ============================================================================
// RecordPayment
// ============================================================================

func TestInboundService_RecordPayment(t *testing.T) {
	f := newInboundFixture(t)

	supplier := testSupplier(t, "Golden Farm")
	account, err := purchasing.NewSupplierAccount(supplier.ID, supplier.Name)
	require.NoError(t, err)
	require.NoError(t, account.RecordPurchase(valueobject.NewMoneyMMK(decimal.NewFromInt(10000)), time.Now()))

	f.suppliers.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	f.sequence.On("Next", mock.Anything, numbering.PrefixPayment).Return("PM-260828-001", nil)
	f.accounts.On("FindBySupplierID", mock.Anything, supplier.ID).Return(account, nil)
	f.accounts.On("Save", mock.Anything, account).Return(nil)

	result, err := f.service.RecordPayment(context.Background(), supplier.ID, decimal.NewFromInt(4000), "finance")
	require.NoError(t, err)

	assert.Equal(t, "PM-260828-001", result.PaymentNumber)
	assert.True(t, result.CurrentBalance.Equal(decimal.NewFromInt(6000)))
	assert.True(t, account.CheckInvariant())
}

func TestInboundService_RecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	f := newInboundFixture(t)

	_, err := f.service.RecordPayment(context.Background(), uuid.New(), decimal.Zero, "finance")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
}

// ============================================================================
// GetSupplierAccount
// ============================================================================

func TestInboundService_GetSupplierAccount_ZeroedWhenAbsent(t *testing.T) {
	f := newInboundFixture(t)
	supplier := testSupplier(t, "River Market")

	f.accounts.On("FindBySupplierID", mock.Anything, supplier.ID).Return(nil, shared.ErrNotFound)
	f.suppliers.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

	account, err := f.service.GetSupplierAccount(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.True(t, account.CurrentBalance.IsZero())
	assert.Equal(t, supplier.Name, account.SupplierName)
}
