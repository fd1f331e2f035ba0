package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// ledgerSortFields contains allowed sort fields for purchase ledgers
var ledgerSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"ledger_number": true,
	"received_at":   true,
	"total_amount":  true,
}

// GormPurchaseLedgerRepository implements PurchaseLedgerRepository
// using GORM. The ledger is append-only; there is no update path.
type GormPurchaseLedgerRepository struct {
	db *gorm.DB
}

var _ purchasing.PurchaseLedgerRepository = (*GormPurchaseLedgerRepository)(nil)

// NewGormPurchaseLedgerRepository creates a new GormPurchaseLedgerRepository
func NewGormPurchaseLedgerRepository(db *gorm.DB) *GormPurchaseLedgerRepository {
	return &GormPurchaseLedgerRepository{db: db}
}

// Create persists a new ledger entry with its items
func (r *GormPurchaseLedgerRepository) Create(ctx context.Context, ledger *purchasing.PurchaseLedger) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range ledger.Items {
			ledger.Items[i].LedgerID = ledger.ID
		}
		return tx.Create(ledger).Error
	})
}

// FindByID finds a ledger by its ID, items preloaded
func (r *GormPurchaseLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseLedger, error) {
	var ledger purchasing.PurchaseLedger
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&ledger, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

// FindByPurchaseOrderID returns ledgers created against a purchase order
func (r *GormPurchaseLedgerRepository) FindByPurchaseOrderID(ctx context.Context, orderID uuid.UUID) ([]*purchasing.PurchaseLedger, error) {
	var ledgers []*purchasing.PurchaseLedger
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("purchase_order_id = ?", orderID).
		Order("received_at asc").
		Find(&ledgers).Error; err != nil {
		return nil, err
	}
	return ledgers, nil
}

// List returns a page of ledgers matching the filter
func (r *GormPurchaseLedgerRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*purchasing.PurchaseLedger], error) {
	query := r.db.WithContext(ctx).Model(&purchasing.PurchaseLedger{})

	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if orderNumber, ok := filter.Filters["order_number"]; ok {
		query = query.Where("order_number = ?", orderNumber)
	}
	if filter.Search != "" {
		query = query.Where("ledger_number ILIKE ? OR supplier_name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*purchasing.PurchaseLedger]{}, err
	}

	var ledgers []*purchasing.PurchaseLedger
	if err := applyPagedFilter(query, filter, ledgerSortFields).
		Preload("Items").
		Find(&ledgers).Error; err != nil {
		return shared.Paginated[*purchasing.PurchaseLedger]{}, err
	}

	return shared.NewPaginated(ledgers, total, filter.Page, filter.PageSize), nil
}
