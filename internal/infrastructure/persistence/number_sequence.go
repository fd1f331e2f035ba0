package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/freshsupply/backend/internal/domain/numbering"
)

// lastCounter is the persistence model backing number generation. One
// row per prefix holds the last issued counter and the date it belongs
// to.
type lastCounter struct {
	Prefix    string    `gorm:"type:varchar(10);primary_key"`
	Date      string    `gorm:"type:varchar(6);not null"`
	Counter   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (lastCounter) TableName() string {
	return "last_counters"
}

// GormSequenceGenerator issues date-scoped business numbers backed by
// the last_counters table. The counter row is read under SELECT FOR
// UPDATE so concurrent callers serialize and numbers stay gapless.
type GormSequenceGenerator struct {
	db *gorm.DB
}

var _ numbering.Generator = (*GormSequenceGenerator)(nil)

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next returns the next identifier for the prefix. The counter resets
// to 1 when the date rolls over.
func (g *GormSequenceGenerator) Next(ctx context.Context, prefix string) (string, error) {
	now := time.Now()
	today := now.Format("060102")

	var number string
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row lastCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("prefix = ?", prefix).
			First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = lastCounter{Prefix: prefix, Date: today, Counter: 1, UpdatedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if row.Date != today {
				row.Date = today
				row.Counter = 1
			} else {
				row.Counter++
			}
			row.UpdatedAt = now
			result := tx.Model(&lastCounter{}).
				Where("prefix = ?", prefix).
				Updates(map[string]interface{}{
					"date":       row.Date,
					"counter":    row.Counter,
					"updated_at": row.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
		}

		number = numbering.Format(prefix, now, row.Counter)
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}
