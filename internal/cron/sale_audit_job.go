package cron

import (
	"context"
	"fmt"

	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/logger"
)

const SaleIntegrityAuditJobName = "sale_integrity_audit"

type orphanHeaderFinder interface {
	ListOrphanHeaders(ctx context.Context) ([]models.Sale, error)
}

type orphanHeaderGauge interface {
	SetOrphanSaleHeaders(count int)
}

type SaleIntegrityAuditJobParams struct {
	Logger *logger.Logger
	Sales  orphanHeaderFinder
	Gauge  orphanHeaderGauge
}

// NewSaleIntegrityAuditJob reports sale headers that were stored without
// any lines. Headers are only reported, never repaired.
func NewSaleIntegrityAuditJob(params SaleIntegrityAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &saleIntegrityAuditJob{logg: params.Logger, sales: params.Sales, gauge: params.Gauge}, nil
}

type saleIntegrityAuditJob struct {
	logg  *logger.Logger
	sales orphanHeaderFinder
	gauge orphanHeaderGauge
}

func (j *saleIntegrityAuditJob) Name() string { return SaleIntegrityAuditJobName }

func (j *saleIntegrityAuditJob) Run(ctx context.Context) error {
	orphans, err := j.sales.ListOrphanHeaders(ctx)
	if err != nil {
		return fmt.Errorf("list orphan sale headers: %w", err)
	}
	for _, sale := range orphans {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"sale_id":     sale.ID.String(),
			"sold_at":     sale.SoldAt,
			"total":       sale.Total.String(),
			"employee_id": sale.EmployeeID.String(),
		}), "sales.orphan_header")
	}
	if j.gauge != nil {
		j.gauge.SetOrphanSaleHeaders(len(orphans))
	}
	j.logg.Info(j.logg.WithField(ctx, "orphan_headers", len(orphans)), "sale integrity audit complete")
	return nil
}
