package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/cutoff"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// GormWindowRepository implements WindowRepository using GORM. The
// cutoff window is a singleton row; Get returns the oldest row so a
// stray duplicate never flips the active record.
type GormWindowRepository struct {
	db *gorm.DB
}

var _ cutoff.WindowRepository = (*GormWindowRepository)(nil)

// NewGormWindowRepository creates a new GormWindowRepository
func NewGormWindowRepository(db *gorm.DB) *GormWindowRepository {
	return &GormWindowRepository{db: db}
}

// Get returns the singleton window record
func (r *GormWindowRepository) Get(ctx context.Context) (*cutoff.Window, error) {
	var window cutoff.Window
	if err := r.db.WithContext(ctx).
		Order("created_at asc").
		First(&window).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &window, nil
}

// Save creates or updates the window with optimistic locking on the
// version column
func (r *GormWindowRepository) Save(ctx context.Context, window *cutoff.Window) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&cutoff.Window{}).
			Where("id = ?", window.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(window).Error
		}

		previousVersion := window.Version - 1
		result := tx.Model(&cutoff.Window{}).
			Where("id = ? AND version = ?", window.ID, previousVersion).
			Updates(map[string]interface{}{
				"status":     window.Status,
				"opened_at":  window.OpenedAt,
				"closed_at":  window.ClosedAt,
				"closed_by":  window.ClosedBy,
				"version":    window.Version,
				"updated_at": window.UpdatedAt,
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

// GormCycleRepository implements CycleRepository using GORM. Like the
// window, the order cycle is a singleton row.
type GormCycleRepository struct {
	db *gorm.DB
}

var _ cutoff.CycleRepository = (*GormCycleRepository)(nil)

// NewGormCycleRepository creates a new GormCycleRepository
func NewGormCycleRepository(db *gorm.DB) *GormCycleRepository {
	return &GormCycleRepository{db: db}
}

// Get returns the singleton cycle record
func (r *GormCycleRepository) Get(ctx context.Context) (*cutoff.Cycle, error) {
	var cycle cutoff.Cycle
	if err := r.db.WithContext(ctx).
		Order("created_at asc").
		First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cycle, nil
}

// Save creates or updates the cycle with optimistic locking on the
// version column
func (r *GormCycleRepository) Save(ctx context.Context, cycle *cutoff.Cycle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&cutoff.Cycle{}).
			Where("id = ?", cycle.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(cycle).Error
		}

		previousVersion := cycle.Version - 1
		result := tx.Model(&cutoff.Cycle{}).
			Where("id = ? AND version = ?", cycle.ID, previousVersion).
			Updates(map[string]interface{}{
				"reset_at":                cycle.ResetAt,
				"is_confirmed":            cycle.IsConfirmed,
				"last_confirmed_at":       cycle.LastConfirmedAt,
				"auto_reset_scheduled_at": cycle.AutoResetScheduledAt,
				"confirmed_by":            cycle.ConfirmedBy,
				"version":                 cycle.Version,
				"updated_at":              cycle.UpdatedAt,
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
