package cron

import (
	"context"
	"fmt"

	"github.com/litcafe/backoffice/internal/inventory"
	"github.com/litcafe/backoffice/pkg/logger"
)

const LowStockReportJobName = "low_stock_report"

type lowStockLister interface {
	LowStock(ctx context.Context) ([]inventory.IngredientDTO, error)
}

type lowStockGauge interface {
	SetLowStock(count int)
}

type LowStockReportJobParams struct {
	Logger    *logger.Logger
	Inventory lowStockLister
	Gauge     lowStockGauge
}

// NewLowStockReportJob logs every ingredient at or below its minimum and
// publishes the count.
func NewLowStockReportJob(params LowStockReportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &lowStockReportJob{logg: params.Logger, inventory: params.Inventory, gauge: params.Gauge}, nil
}

type lowStockReportJob struct {
	logg      *logger.Logger
	inventory lowStockLister
	gauge     lowStockGauge
}

func (j *lowStockReportJob) Name() string { return LowStockReportJobName }

func (j *lowStockReportJob) Run(ctx context.Context) error {
	items, err := j.inventory.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	for _, item := range items {
		fields := map[string]any{
			"ingredient_id": item.ID.String(),
			"ingredient":    item.Name,
			"stock":         item.Stock.String(),
			"min_stock":     item.MinStock.String(),
			"unit":          item.UnitOfMeasure,
		}
		if item.SupplierName != nil {
			fields["supplier"] = *item.SupplierName
		}
		j.logg.Warn(j.logg.WithFields(ctx, fields), "inventory.low_stock")
	}
	if j.gauge != nil {
		j.gauge.SetLowStock(len(items))
	}
	j.logg.Info(j.logg.WithField(ctx, "low_stock_items", len(items)), "low stock report complete")
	return nil
}
