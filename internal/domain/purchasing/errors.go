package purchasing

import (
	"fmt"

	"github.com/google/uuid"
)

// DuplicatePurchaseOrderError is returned when generation detects an
// existing purchase order for the same supplier and category inside the
// duplicate-detection window. It carries the conflicting order so the
// caller can redirect to it instead of retrying.
type DuplicatePurchaseOrderError struct {
	ExistingOrderID     uuid.UUID
	ExistingOrderNumber string
	SupplierName        string
}

// Error implements the error interface
func (e *DuplicatePurchaseOrderError) Error() string {
	return fmt.Sprintf("purchase order %s already generated for supplier %s in this cycle", e.ExistingOrderNumber, e.SupplierName)
}

// Code returns the stable error code, mirroring shared.DomainError
func (e *DuplicatePurchaseOrderError) Code() string {
	return "DUPLICATE_PURCHASE_ORDER"
}
