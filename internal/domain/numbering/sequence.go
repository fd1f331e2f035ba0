package numbering

import (
	"context"
	"fmt"
	"time"
)

// Prefixes for date-scoped business identifiers
const (
	PrefixSaleOrder      = "SO"
	PrefixPurchaseOrder  = "PO"
	PrefixPurchaseLedger = "PL"
	PrefixPayment        = "PM"
)

// Generator issues date-scoped, monotonically increasing business
// identifiers of the form <PREFIX>-<YYMMDD>-<NNN>. Counters reset to 1
// when the date changes and are allowed to grow past three digits on
// overflow rather than fail.
type Generator interface {
	// Next returns the next identifier for the prefix. Concurrent calls
	// for the same prefix yield distinct, gapless numbers.
	Next(ctx context.Context, prefix string) (string, error)
}

// Format renders an identifier from its parts. The counter is
// zero-padded to three digits; wider values pass through unchanged.
func Format(prefix string, date time.Time, counter int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, date.Format("060102"), counter)
}
