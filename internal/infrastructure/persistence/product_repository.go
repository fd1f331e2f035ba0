package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/catalog"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// productSortFields contains allowed sort fields for products
var productSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"category":   true,
	"sale_price": true,
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns products for the given IDs; missing IDs are absent
// from the result
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []*catalog.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByCode finds a product by its business code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List returns a page of products matching the filter
func (r *GormProductRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})

	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if isActive, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", isActive)
	}
	if filter.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*catalog.Product]{}, err
	}

	var products []*catalog.Product
	if err := applyPagedFilter(query, filter, productSortFields).
		Find(&products).Error; err != nil {
		return shared.Paginated[*catalog.Product]{}, err
	}

	return shared.NewPaginated(products, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a product with optimistic locking on the
// version column
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalog.Product{}).
			Where("id = ?", product.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(product).Error
		}

		previousVersion := product.Version - 1
		result := tx.Model(&catalog.Product{}).
			Where("id = ? AND version = ?", product.ID, previousVersion).
			Updates(map[string]interface{}{
				"code":           product.Code,
				"name":           product.Name,
				"category":       product.Category,
				"supplier_id":    product.SupplierID,
				"unit":           product.Unit,
				"sale_price":     product.SalePrice,
				"purchase_price": product.PurchasePrice,
				"is_active":      product.IsActive,
				"version":        product.Version,
				"updated_at":     product.UpdatedAt,
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
