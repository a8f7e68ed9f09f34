package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestCronJobMetricsRecordsRunsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "low_stock_report"
	metrics.ObserveRun(job, 250*time.Millisecond, nil)
	metrics.ObserveRun(job, 100*time.Millisecond, errors.New("db down"))
	metrics.IncSkippedCycle()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	runs := findMetricFamily(mfs, "litcafe_cron_job_runs_total")
	if runs == nil {
		t.Fatal("runs counter not exported")
	}
	outcomes := map[string]float64{}
	for _, metric := range runs.GetMetric() {
		if matchesLabel(metric.GetLabel(), "job", job) {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					outcomes[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	if outcomes["success"] != 1 || outcomes["failure"] != 1 {
		t.Fatalf("expected one run per outcome, got %v", outcomes)
	}

	if got, err := fetchHistogramSum(mfs, "litcafe_cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got < 0.35 {
		t.Fatalf("expected duration sum 0.35, got %f", got)
	}

	last := findMetricFamily(mfs, "litcafe_cron_job_last_success_timestamp_seconds")
	if last == nil || last.GetMetric()[0].GetGauge().GetValue() <= 0 {
		t.Fatal("expected last success timestamp")
	}
	skipped := findMetricFamily(mfs, "litcafe_cron_cycles_skipped_total")
	if skipped == nil || skipped.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatal("expected one skipped cycle")
	}
}

func TestSaleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSaleMetrics(reg)
	metrics.ObserveSale("card", decimal.NewFromInt(250))
	metrics.ObserveSale("card", decimal.NewFromInt(50))
	metrics.IncFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "litcafe_sales_submitted_total", "payment_method", "card"); err != nil || got != 2 {
		t.Fatalf("expected 2 card sales, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "litcafe_sale_amount", "payment_method", "card"); err != nil || got != 300 {
		t.Fatalf("expected amount sum 300, got %f (%v)", got, err)
	}
	failed := findMetricFamily(mfs, "litcafe_sales_failed_total")
	if failed == nil || failed.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one failed sale")
	}
}

func TestInventoryMetricsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewInventoryMetrics(reg)
	metrics.SetLowStock(3)
	metrics.SetOrphanSaleHeaders(1)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	low := findMetricFamily(mfs, "litcafe_inventory_low_stock_items")
	if low == nil || low.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected low stock gauge 3")
	}
	orphans := findMetricFamily(mfs, "litcafe_sales_orphan_headers")
	if orphans == nil || orphans.GetMetric()[0].GetGauge().GetValue() != 1 {
		t.Fatalf("expected orphan gauge 1")
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	NewCronJobMetrics(nil).ObserveRun("x", time.Second, nil)
	var nilCron *CronJobMetrics
	nilCron.IncSkippedCycle()
	NewSaleMetrics(nil).ObserveSale("cash", decimal.NewFromInt(1))
	NewInventoryMetrics(nil).SetLowStock(1)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	var nilSales *SaleMetrics
	nilSales.IncFailure()
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("GET", "/api/v1/pos/cart", 200, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchHistogramSum(mfs, "litcafe_http_request_duration_seconds", "route", "/api/v1/pos/cart"); err != nil || got <= 0 {
		t.Fatalf("expected observed latency, got %f (%v)", got, err)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
