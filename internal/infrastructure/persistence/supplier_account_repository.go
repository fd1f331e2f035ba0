package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// accountSortFields contains allowed sort fields for supplier accounts
var accountSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"supplier_name":         true,
	"current_balance":       true,
	"total_purchase_amount": true,
	"last_purchase_date":    true,
}

// GormSupplierAccountRepository implements SupplierAccountRepository using GORM
type GormSupplierAccountRepository struct {
	db *gorm.DB
}

var _ purchasing.SupplierAccountRepository = (*GormSupplierAccountRepository)(nil)

// NewGormSupplierAccountRepository creates a new GormSupplierAccountRepository
func NewGormSupplierAccountRepository(db *gorm.DB) *GormSupplierAccountRepository {
	return &GormSupplierAccountRepository{db: db}
}

// FindBySupplierID finds the account for a supplier
func (r *GormSupplierAccountRepository) FindBySupplierID(ctx context.Context, supplierID uuid.UUID) (*purchasing.SupplierAccount, error) {
	var account purchasing.SupplierAccount
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// List returns a page of supplier accounts matching the filter
func (r *GormSupplierAccountRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*purchasing.SupplierAccount], error) {
	query := r.db.WithContext(ctx).Model(&purchasing.SupplierAccount{})

	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if filter.Search != "" {
		query = query.Where("supplier_name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*purchasing.SupplierAccount]{}, err
	}

	var accounts []*purchasing.SupplierAccount
	if err := applyPagedFilter(query, filter, accountSortFields).
		Find(&accounts).Error; err != nil {
		return shared.Paginated[*purchasing.SupplierAccount]{}, err
	}

	return shared.NewPaginated(accounts, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a supplier account with optimistic locking
// on the version column
func (r *GormSupplierAccountRepository) Save(ctx context.Context, account *purchasing.SupplierAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&purchasing.SupplierAccount{}).
			Where("id = ?", account.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(account).Error
		}

		previousVersion := account.Version - 1
		result := tx.Model(&purchasing.SupplierAccount{}).
			Where("id = ? AND version = ?", account.ID, previousVersion).
			Updates(map[string]interface{}{
				"supplier_name":         account.SupplierName,
				"total_purchase_amount": account.TotalPurchaseAmount,
				"total_paid_amount":     account.TotalPaidAmount,
				"current_balance":       account.CurrentBalance,
				"transaction_count":     account.TransactionCount,
				"last_purchase_date":    account.LastPurchaseDate,
				"last_payment_date":     account.LastPaymentDate,
				"version":               account.Version,
				"updated_at":            account.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}
