package cutoff

import (
	"time"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// WindowStatus represents the status of the ordering cutoff window
type WindowStatus string

const (
	WindowStatusOpen   WindowStatus = "OPEN"
	WindowStatusClosed WindowStatus = "CLOSED"
)

// IsValid checks if the status is a valid WindowStatus
func (s WindowStatus) IsValid() bool {
	switch s {
	case WindowStatusOpen, WindowStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of WindowStatus
func (s WindowStatus) String() string {
	return string(s)
}

// Window represents the cutoff window singleton.
// While the window is open, incoming sale orders for the watched category
// are stamped within-cutoff; once closed they are stamped after-cutoff.
type Window struct {
	shared.BaseAggregateRoot
	Status   WindowStatus `gorm:"type:varchar(20);not null;default:'OPEN'"`
	OpenedAt *time.Time
	ClosedAt *time.Time
	ClosedBy string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Window) TableName() string {
	return "cutoff_windows"
}

// NewWindow creates the cutoff window record in the open state
func NewWindow() *Window {
	now := time.Now()
	return &Window{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            WindowStatusOpen,
		OpenedAt:          &now,
	}
}

// Open opens the window and stamps OpenedAt.
// Calling while already open overwrites OpenedAt; the previous window
// boundary is intentionally discarded.
func (w *Window) Open() {
	now := time.Now()
	w.Status = WindowStatusOpen
	w.OpenedAt = &now
	w.ClosedAt = nil
	w.ClosedBy = ""
	w.UpdatedAt = now
	w.IncrementVersion()
}

// Close flips the window to closed and records the closing actor.
// Fails with ALREADY_CLOSED if the window is not open.
func (w *Window) Close(actor string) error {
	if w.Status == WindowStatusClosed {
		return shared.NewDomainError("ALREADY_CLOSED", "Cutoff window is already closed")
	}
	now := time.Now()
	w.Status = WindowStatusClosed
	w.ClosedAt = &now
	w.ClosedBy = actor
	w.UpdatedAt = now
	w.IncrementVersion()
	return nil
}

// IsOpen returns true if the window is currently open
func (w *Window) IsOpen() bool {
	return w.Status == WindowStatusOpen
}

// IsClosed returns true if the window is currently closed
func (w *Window) IsClosed() bool {
	return w.Status == WindowStatusClosed
}
