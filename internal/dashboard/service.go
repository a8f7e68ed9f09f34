// Package dashboard aggregates the headline figures of the back-office home
// screen.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/litcafe/backoffice/internal/sales"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Summary is the dashboard payload.
type Summary struct {
	Date           string          `json:"date"`
	DailySales     decimal.Decimal `json:"daily_sales"`
	MonthlySales   decimal.Decimal `json:"monthly_sales"`
	LowStockItems  int64           `json:"low_stock_items"`
	TotalEmployees int64           `json:"total_employees"`
}

type salesTotals interface {
	TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type lowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

type employeeCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service computes the dashboard summary.
type Service interface {
	Summary(ctx context.Context, now time.Time) (*Summary, error)
}

type service struct {
	sales     salesTotals
	inventory lowStockCounter
	employees employeeCounter
	loc       *time.Location
}

func NewService(s salesTotals, inv lowStockCounter, emp employeeCounter, loc *time.Location) (Service, error) {
	if s == nil || inv == nil || emp == nil {
		return nil, fmt.Errorf("dashboard requires sales, inventory and employee services")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{sales: s, inventory: inv, employees: emp, loc: loc}, nil
}

// Summary runs the four lookups concurrently; the first failure wins.
func (s *service) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	out := Summary{Date: now.In(s.loc).Format("2006-01-02")}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		from, to := sales.DayBounds(now, s.loc)
		total, err := s.sales.TotalBetween(gctx, from, to)
		out.DailySales = total
		return err
	})
	g.Go(func() error {
		from, to := sales.MonthBounds(now, s.loc)
		total, err := s.sales.TotalBetween(gctx, from, to)
		out.MonthlySales = total
		return err
	})
	g.Go(func() error {
		n, err := s.inventory.CountLowStock(gctx)
		out.LowStockItems = n
		return err
	})
	g.Go(func() error {
		n, err := s.employees.Count(gctx)
		out.TotalEmployees = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
