package cutoff

import (
	"time"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// AutoResetDelay is how long after confirmation the cycle reverts to
// unconfirmed if nobody resets it manually.
const AutoResetDelay = 17 * time.Hour

// Cycle represents the daily order cycle singleton.
// ResetAt is the lower time bound for aggregation and duplicate-detection
// queries; it advances only on Reset or on the first ever confirmation.
type Cycle struct {
	shared.BaseAggregateRoot
	ResetAt              time.Time `gorm:"not null"`
	IsConfirmed          bool      `gorm:"not null;default:false"`
	LastConfirmedAt      *time.Time
	AutoResetScheduledAt *time.Time
	ConfirmedBy          string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Cycle) TableName() string {
	return "order_cycles"
}

// NewCycle creates the cycle record with ResetAt at start of today
func NewCycle() *Cycle {
	return &Cycle{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ResetAt:           StartOfToday(),
		IsConfirmed:       false,
	}
}

// StartOfToday returns midnight of the current day in local time
func StartOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Confirm marks the cycle confirmed and schedules the auto-reset.
// ResetAt is preserved; if it was never initialized it is set to start
// of today so the aggregation lower bound is always defined.
func (c *Cycle) Confirm(actor string) {
	now := time.Now()
	if c.ResetAt.IsZero() {
		c.ResetAt = StartOfToday()
	}
	autoReset := now.Add(AutoResetDelay)
	c.IsConfirmed = true
	c.LastConfirmedAt = &now
	c.AutoResetScheduledAt = &autoReset
	c.ConfirmedBy = actor
	c.UpdatedAt = now
	c.IncrementVersion()
}

// Reset advances ResetAt to now and clears the confirmation state.
// This is the sole mechanism that moves the aggregation lower bound.
func (c *Cycle) Reset() {
	now := time.Now()
	c.ResetAt = now
	c.IsConfirmed = false
	c.LastConfirmedAt = nil
	c.AutoResetScheduledAt = nil
	c.ConfirmedBy = ""
	c.UpdatedAt = now
	c.IncrementVersion()
}

// AutoResetDue returns true if a scheduled auto-reset has come due
func (c *Cycle) AutoResetDue(now time.Time) bool {
	return c.IsConfirmed && c.AutoResetScheduledAt != nil && !now.Before(*c.AutoResetScheduledAt)
}
