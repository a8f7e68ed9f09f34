package cron

import (
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/metrics"
)

// StandardJobsParams carries what the back-office jobs read and publish.
type StandardJobsParams struct {
	Logger    *logger.Logger
	Inventory lowStockLister
	Sales     orphanHeaderFinder
	Gauges    *metrics.InventoryMetrics
}

// NewStandardRegistry registers the low stock report and the sale integrity
// audit, in that order.
func NewStandardRegistry(params StandardJobsParams) (*Registry, error) {
	lowStock, err := NewLowStockReportJob(LowStockReportJobParams{
		Logger:    params.Logger,
		Inventory: params.Inventory,
		Gauge:     params.Gauges,
	})
	if err != nil {
		return nil, err
	}
	audit, err := NewSaleIntegrityAuditJob(SaleIntegrityAuditJobParams{
		Logger: params.Logger,
		Sales:  params.Sales,
		Gauge:  params.Gauges,
	})
	if err != nil {
		return nil, err
	}
	return NewRegistry(lowStock, audit)
}
