package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	date := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)

	assert.Equal(t, "PO-260828-001", Format(PrefixPurchaseOrder, date, 1))
	assert.Equal(t, "PL-260828-042", Format(PrefixPurchaseLedger, date, 42))
	assert.Equal(t, "SO-260828-999", Format(PrefixSaleOrder, date, 999))
	// counter overflows past three digits instead of failing
	assert.Equal(t, "PM-260828-1000", Format(PrefixPayment, date, 1000))
}
