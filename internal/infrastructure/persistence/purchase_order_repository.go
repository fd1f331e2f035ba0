package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID, items preloaded
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds a purchase order by its business number
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindBySupplierCategoryPlacedBetween returns orders for the supplier
// and category with placed_at in [from, to]. Cancelled orders still
// match; a cancelled order inside the window blocks regeneration until
// the window moves on.
func (r *GormPurchaseOrderRepository) FindBySupplierCategoryPlacedBetween(ctx context.Context, supplierID uuid.UUID, category string, from, to time.Time) ([]*purchasing.PurchaseOrder, error) {
	var orders []*purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND category = ? AND placed_at >= ? AND placed_at <= ?",
			supplierID, category, from, to).
		Order("placed_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByIDs returns purchase orders for the given IDs, items preloaded.
// Missing IDs are absent from the result.
func (r *GormPurchaseOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*purchasing.PurchaseOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []*purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id IN ?", ids).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns a page of purchase orders matching the filter
func (r *GormPurchaseOrderRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*purchasing.PurchaseOrder], error) {
	query := r.db.WithContext(ctx).Model(&purchasing.PurchaseOrder{})

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ? OR supplier_name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*purchasing.PurchaseOrder]{}, err
	}

	var orders []*purchasing.PurchaseOrder
	if err := applyPagedFilter(query, filter, orderSortFields).
		Preload("Items").
		Find(&orders).Error; err != nil {
		return shared.Paginated[*purchasing.PurchaseOrder]{}, err
	}

	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a purchase order with optimistic locking on
// the version column
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&purchasing.PurchaseOrder{}).
			Where("id = ?", order.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(order).Error
		}

		previousVersion := order.Version - 1
		result := tx.Model(&purchasing.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, previousVersion).
			Updates(map[string]interface{}{
				"supplier_id":         order.SupplierID,
				"supplier_name":       order.SupplierName,
				"category":            order.Category,
				"total_quantity":      order.TotalQuantity,
				"total_amount":        order.TotalAmount,
				"status":              order.Status,
				"confirmation_status": order.ConfirmationStatus,
				"sms_success":         order.SmsSuccess,
				"last_sms_sent_at":    order.LastSmsSentAt,
				"ledger_id":           order.LedgerID,
				"confirmed_at":        order.ConfirmedAt,
				"completed_at":        order.CompletedAt,
				"cancelled_at":        order.CancelledAt,
				"remark":              order.Remark,
				"version":             order.Version,
				"updated_at":          order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return savePurchaseOrderItems(tx, order)
	})
}

func savePurchaseOrderItems(tx *gorm.DB, order *purchasing.PurchaseOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&purchasing.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&purchasing.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
