package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// SaleMetrics counts submitted sales and their amounts per payment method.
type SaleMetrics struct {
	submitted *prometheus.CounterVec
	failed    prometheus.Counter
	amount    *prometheus.HistogramVec
}

// NewSaleMetrics registers the POS sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_submitted_total",
		Help:      "Sales committed from the POS.",
	}, []string{"payment_method"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_failed_total",
		Help:      "Sale submissions that failed to persist.",
	})
	amount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sale_amount",
		Help:      "Sale totals in the house currency.",
		Buckets:   []float64{50, 100, 200, 350, 500, 750, 1000, 2000, 5000},
	}, []string{"payment_method"})
	reg.MustRegister(submitted, failed, amount)
	return &SaleMetrics{submitted: submitted, failed: failed, amount: amount}
}

// ObserveSale records a committed sale.
func (m *SaleMetrics) ObserveSale(paymentMethod string, total decimal.Decimal) {
	if m == nil || m.submitted == nil {
		return
	}
	label := normalizeLabel(paymentMethod)
	m.submitted.WithLabelValues(label).Inc()
	m.amount.WithLabelValues(label).Observe(total.InexactFloat64())
}

// IncFailure records a submission that could not be persisted.
func (m *SaleMetrics) IncFailure() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

// InventoryMetrics exposes gauges refreshed by the background audits.
type InventoryMetrics struct {
	lowStock      prometheus.Gauge
	orphanHeaders prometheus.Gauge
}

// NewInventoryMetrics registers the audit gauges on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inventory_low_stock_items",
		Help:      "Ingredients at or below their minimum stock.",
	})
	orphanHeaders := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sales_orphan_headers",
		Help:      "Sale headers persisted without any lines.",
	})
	reg.MustRegister(lowStock, orphanHeaders)
	return &InventoryMetrics{lowStock: lowStock, orphanHeaders: orphanHeaders}
}

func (m *InventoryMetrics) SetLowStock(count int) {
	if m == nil || m.lowStock == nil {
		return
	}
	m.lowStock.Set(float64(count))
}

func (m *InventoryMetrics) SetOrphanSaleHeaders(count int) {
	if m == nil || m.orphanHeaders == nil {
		return
	}
	m.orphanHeaders.Set(float64(count))
}
