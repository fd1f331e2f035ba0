package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks the pipeline's business counters: purchase
// orders generated, notifications sent, ledgers written.
type BusinessMetrics struct {
	logger *zap.Logger

	purchaseOrdersGenerated *Counter
	purchaseAmountTotal     *Counter
	notificationsSent       *Counter
	ledgersWritten          *Counter
	ledgerAmountTotal       *Counter
	saleOrdersCreated       *Counter
}

// NewBusinessMetrics creates the business counters on the given meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger}

	var err error
	if bm.purchaseOrdersGenerated, err = NewCounter(meter,
		"fresh_purchase_orders_generated_total",
		"Total purchase orders generated from aggregation", "{orders}"); err != nil {
		return nil, err
	}
	if bm.purchaseAmountTotal, err = NewCounter(meter,
		"fresh_purchase_amount_total",
		"Total generated purchase amount in MMK", "{mmk}"); err != nil {
		return nil, err
	}
	if bm.notificationsSent, err = NewCounter(meter,
		"fresh_notifications_sent_total",
		"Total supplier notification pages sent", "{pages}"); err != nil {
		return nil, err
	}
	if bm.ledgersWritten, err = NewCounter(meter,
		"fresh_ledgers_written_total",
		"Total purchase ledgers written by inbound reconciliation", "{ledgers}"); err != nil {
		return nil, err
	}
	if bm.ledgerAmountTotal, err = NewCounter(meter,
		"fresh_ledger_amount_total",
		"Total reconciled ledger amount in MMK", "{mmk}"); err != nil {
		return nil, err
	}
	if bm.saleOrdersCreated, err = NewCounter(meter,
		"fresh_sale_orders_created_total",
		"Total sale orders created", "{orders}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordPurchaseOrderGenerated counts one generated purchase order
func (bm *BusinessMetrics) RecordPurchaseOrderGenerated(ctx context.Context, category string, amount decimal.Decimal) {
	bm.purchaseOrdersGenerated.Inc(ctx, AttrCategory.String(category))
	bm.purchaseAmountTotal.Add(ctx, amount.IntPart(), AttrCategory.String(category))
}

// RecordNotificationPages counts sent notification pages by outcome
func (bm *BusinessMetrics) RecordNotificationPages(ctx context.Context, success, failure int) {
	if success > 0 {
		bm.notificationsSent.Add(ctx, int64(success), AttrOutcome.String("success"))
	}
	if failure > 0 {
		bm.notificationsSent.Add(ctx, int64(failure), AttrOutcome.String("failure"))
	}
}

// RecordLedgerWritten counts one reconciled ledger entry
func (bm *BusinessMetrics) RecordLedgerWritten(ctx context.Context, supplierName string, amount decimal.Decimal) {
	bm.ledgersWritten.Inc(ctx, AttrSupplier.String(supplierName))
	bm.ledgerAmountTotal.Add(ctx, amount.IntPart(), AttrSupplier.String(supplierName))
}

// RecordSaleOrderCreated counts one created sale order
func (bm *BusinessMetrics) RecordSaleOrderCreated(ctx context.Context, category string) {
	bm.saleOrdersCreated.Inc(ctx, AttrCategory.String(category))
}
