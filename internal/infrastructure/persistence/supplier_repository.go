package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/partner"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// partnerSortFields contains allowed sort fields for suppliers
var partnerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
}

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).
		First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindByIDs returns suppliers for the given IDs; missing IDs are
// absent from the result
func (r *GormSupplierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*partner.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var suppliers []*partner.Supplier
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// FindByCode finds a supplier by its business code
func (r *GormSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// List returns a page of suppliers matching the filter
func (r *GormSupplierRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*partner.Supplier], error) {
	query := r.db.WithContext(ctx).Model(&partner.Supplier{})

	if isActive, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", isActive)
	}
	if filter.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ? OR contact_name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*partner.Supplier]{}, err
	}

	var suppliers []*partner.Supplier
	if err := applyPagedFilter(query, filter, partnerSortFields).
		Find(&suppliers).Error; err != nil {
		return shared.Paginated[*partner.Supplier]{}, err
	}

	return shared.NewPaginated(suppliers, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a supplier with optimistic locking on the
// version column
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&partner.Supplier{}).
			Where("id = ?", supplier.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(supplier).Error
		}

		previousVersion := supplier.Version - 1
		result := tx.Model(&partner.Supplier{}).
			Where("id = ? AND version = ?", supplier.ID, previousVersion).
			Updates(map[string]interface{}{
				"code":            supplier.Code,
				"name":            supplier.Name,
				"contact_name":    supplier.ContactName,
				"primary_phone":   supplier.PrimaryPhone,
				"secondary_phone": supplier.SecondaryPhone,
				"address":         supplier.Address,
				"is_active":       supplier.IsActive,
				"remark":          supplier.Remark,
				"version":         supplier.Version,
				"updated_at":      supplier.UpdatedAt,
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
