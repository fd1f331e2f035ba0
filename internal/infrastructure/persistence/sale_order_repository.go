package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// GormSaleOrderRepository implements SaleOrderRepository using GORM
type GormSaleOrderRepository struct {
	db *gorm.DB
}

var _ ordering.SaleOrderRepository = (*GormSaleOrderRepository)(nil)

// NewGormSaleOrderRepository creates a new GormSaleOrderRepository
func NewGormSaleOrderRepository(db *gorm.DB) *GormSaleOrderRepository {
	return &GormSaleOrderRepository{db: db}
}

// FindByID finds a sale order by its ID, items preloaded
func (r *GormSaleOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.SaleOrder, error) {
	var order ordering.SaleOrder
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

// FindByOrderNumber finds a sale order by its business number
func (r *GormSaleOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.SaleOrder, error) {
	var order ordering.SaleOrder
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

// FindActiveSince returns active orders of a category placed at or
// after since. Rejected and cancelled orders never aggregate.
func (r *GormSaleOrderRepository) FindActiveSince(ctx context.Context, category string, since time.Time) ([]*ordering.SaleOrder, error) {
	var orders []*ordering.SaleOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("category = ? AND placed_at >= ? AND status IN ?",
			category, since, []ordering.SaleOrderStatus{
				ordering.SaleOrderStatusPlaced,
				ordering.SaleOrderStatusConfirmed,
				ordering.SaleOrderStatusPended,
			}).
		Order("placed_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindPlacedBetween returns orders in PLACED status with placed_at in
// [from, to]
func (r *GormSaleOrderRepository) FindPlacedBetween(ctx context.Context, from, to time.Time) ([]*ordering.SaleOrder, error) {
	var orders []*ordering.SaleOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND placed_at >= ? AND placed_at <= ?",
			ordering.SaleOrderStatusPlaced, from, to).
		Order("placed_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns a page of sale orders matching the filter
func (r *GormSaleOrderRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*ordering.SaleOrder], error) {
	query := r.db.WithContext(ctx).Model(&ordering.SaleOrder{})

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	if customerID, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*ordering.SaleOrder]{}, err
	}

	var orders []*ordering.SaleOrder
	if err := applyPagedFilter(query, filter, orderSortFields).
		Preload("Items").
		Find(&orders).Error; err != nil {
		return shared.Paginated[*ordering.SaleOrder]{}, err
	}

	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a sale order with optimistic locking on the
// version column
func (r *GormSaleOrderRepository) Save(ctx context.Context, order *ordering.SaleOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ordering.SaleOrder{}).
			Where("id = ?", order.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(order).Error
		}

		previousVersion := order.Version - 1
		result := tx.Model(&ordering.SaleOrder{}).
			Where("id = ? AND version = ?", order.ID, previousVersion).
			Updates(map[string]interface{}{
				"customer_id":         order.CustomerID,
				"customer_name":       order.CustomerName,
				"category":            order.Category,
				"status":              order.Status,
				"confirmation_status": order.ConfirmationStatus,
				"cutoff_status":       order.CutoffStatus,
				"total_amount":        order.TotalAmount,
				"confirmed_at":        order.ConfirmedAt,
				"pended_at":           order.PendedAt,
				"rejected_at":         order.RejectedAt,
				"completed_at":        order.CompletedAt,
				"cancelled_at":        order.CancelledAt,
				"reject_reason":       order.RejectReason,
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

		return saveOrderItems(tx, order)
	})
}

func saveOrderItems(tx *gorm.DB, order *ordering.SaleOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&ordering.SaleOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&ordering.SaleOrderItem{}).Error; err != nil {
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

// Delete removes a sale order and its items. The application layer
// only calls this for pended orders.
func (r *GormSaleOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).
			Delete(&ordering.SaleOrderItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&ordering.SaleOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
