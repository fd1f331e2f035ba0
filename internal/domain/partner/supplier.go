package partner

import (
	"time"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// Supplier represents a goods supplier. Up to two contact phones are
// kept; both receive purchase-order notifications.
type Supplier struct {
	shared.BaseAggregateRoot
	Code           string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string `gorm:"type:varchar(200);not null"`
	ContactName    string `gorm:"type:varchar(100)"`
	PrimaryPhone   string `gorm:"type:varchar(30)"`
	SecondaryPhone string `gorm:"type:varchar(30)"`
	Address        string `gorm:"type:varchar(500)"`
	IsActive       bool   `gorm:"not null;default:true"`
	Remark         string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(code, name string) (*Supplier, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		IsActive:          true,
	}, nil
}

// UpdateContact updates the contact person and phones
func (s *Supplier) UpdateContact(contactName, primaryPhone, secondaryPhone string) {
	s.ContactName = contactName
	s.PrimaryPhone = primaryPhone
	s.SecondaryPhone = secondaryPhone
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// NotificationRecipients returns the non-empty contact phones, primary
// first. At most two recipients are ever returned.
func (s *Supplier) NotificationRecipients() []string {
	recipients := make([]string, 0, 2)
	if s.PrimaryPhone != "" {
		recipients = append(recipients, s.PrimaryPhone)
	}
	if s.SecondaryPhone != "" {
		recipients = append(recipients, s.SecondaryPhone)
	}
	return recipients
}

// Deactivate marks the supplier inactive
func (s *Supplier) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Activate marks the supplier active
func (s *Supplier) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
