package sales

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// Service exposes the sales history.
type Service interface {
	ListByDay(ctx context.Context, day time.Time) ([]SaleDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error)
	TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	ExportDay(ctx context.Context, day time.Time, w io.Writer) error
}

type service struct {
	repo *Repository
	loc  *time.Location
}

// NewService builds the history service. Calendar days are interpreted in
// loc.
func NewService(repo *Repository, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, loc: loc}, nil
}

// DayBounds returns [start, end) of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns [start, end) of the calendar month containing t in loc.
func MonthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, _ := t.In(loc).Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// ListByDay returns the day's sales, newest first.
func (s *service) ListByDay(ctx context.Context, day time.Time) ([]SaleDTO, error) {
	from, to := DayBounds(day, s.loc)
	rows, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	out := make([]SaleDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewSaleDTO(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	dto := NewSaleDTO(*sale)
	return &dto, nil
}

// TotalBetween returns the summed sale totals in [from, to).
func (s *service) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	total, err := s.repo.TotalBetween(ctx, from, to)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sales")
	}
	return total, nil
}

var exportHeaders = []string{"Venta", "Fecha", "Empleado", "Metodo de pago", "Platillo", "Cantidad", "Precio unitario", "Subtotal"}

// ExportDay writes the day's sales as an xlsx workbook: one row per sale
// line followed by a totals row.
func (s *service) ExportDay(ctx context.Context, day time.Time, w io.Writer) error {
	sales, err := s.ListByDay(ctx, day)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(day.In(s.loc).Format(validation.DateLayout))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sheet")
	}
	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}
	for _, sale := range sales {
		soldAt := sale.SoldAt.In(s.loc).Format("2006-01-02 15:04")
		for _, line := range sale.Lines {
			row := sheet.AddRow()
			row.AddCell().SetValue(sale.ID.String())
			row.AddCell().SetValue(soldAt)
			row.AddCell().SetValue(sale.EmployeeName)
			row.AddCell().SetValue(sale.PaymentMethod.String())
			row.AddCell().SetValue(line.DishName)
			row.AddCell().SetInt(line.Quantity)
			row.AddCell().SetFloat(line.UnitPrice.InexactFloat64())
			row.AddCell().SetFloat(line.Subtotal.InexactFloat64())
		}
	}
	stats := Stats(sales)
	totals := sheet.AddRow()
	totals.AddCell().SetValue("Total")
	totals.AddCell().SetValue(fmt.Sprintf("%d ventas", stats.Count))
	for i := 0; i < 5; i++ {
		totals.AddCell()
	}
	totals.AddCell().SetFloat(stats.Total.InexactFloat64())

	if err := file.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write workbook")
	}
	return nil
}
