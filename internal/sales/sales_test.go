package sales

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/internal/cart"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/db/dbtest"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

type countingTx struct {
	calls int
	err   error
}

func (c *countingTx) WithTx(_ context.Context, _ func(tx *gorm.DB) error) error {
	c.calls++
	return c.err
}

type fixture struct {
	client    *db.Client
	repo      *Repository
	submitter *Submitter
	employee  *models.Employee
	coffee    *models.Dish
	bread     *models.Dish
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	submitter, err := NewSubmitter(repo, client, metrics.NewSaleMetrics(prometheus.NewRegistry()), nil)
	require.NoError(t, err)

	employee := &models.Employee{Name: "Ana", Role: enums.EmployeeRoleCashier, HiredOn: time.Now(), Email: "ana@lit.cafe", PasswordHash: "x"}
	require.NoError(t, client.DB().Create(employee).Error)
	coffee := &models.Dish{Name: "Cafe", Price: decimal.NewFromInt(100), Category: enums.DishCategoryDrinks, Available: true}
	bread := &models.Dish{Name: "Pan", Price: decimal.NewFromInt(50), Category: enums.DishCategoryBakery, Available: true}
	require.NoError(t, client.DB().Create(coffee).Error)
	require.NoError(t, client.DB().Create(bread).Error)

	return &fixture{client: client, repo: repo, submitter: submitter, employee: employee, coffee: coffee, bread: bread}
}

func (f *fixture) cart() *cart.Cart {
	c := cart.New()
	c.AddItem(cart.ItemFromDish(*f.coffee))
	c.AddItem(cart.ItemFromDish(*f.coffee))
	c.AddItem(cart.ItemFromDish(*f.bread))
	return c
}

func TestSubmitRejectsEmptyCartWithoutPersisting(t *testing.T) {
	tx := &countingTx{}
	submitter, err := NewSubmitter(NewRepository(nil), tx, nil, nil)
	require.NoError(t, err)

	_, err = submitter.Submit(context.Background(), cart.New(), uuid.New(), enums.PaymentMethodCash)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Zero(t, tx.calls)

	_, err = submitter.Submit(context.Background(), nil, uuid.New(), enums.PaymentMethodCash)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Zero(t, tx.calls)
}

func TestSubmitValidatesEmployeeAndMethod(t *testing.T) {
	tx := &countingTx{}
	submitter, err := NewSubmitter(NewRepository(nil), tx, nil, nil)
	require.NoError(t, err)
	c := cart.New()
	c.AddItem(cart.Item{ID: uuid.New(), Name: "x", Price: decimal.NewFromInt(1)})

	_, err = submitter.Submit(context.Background(), c, uuid.Nil, enums.PaymentMethodCash)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = submitter.Submit(context.Background(), c, uuid.New(), "bitcoin")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Zero(t, tx.calls)
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	tx := &countingTx{err: errors.New("connection reset")}
	submitter, err := NewSubmitter(NewRepository(nil), tx, nil, nil)
	require.NoError(t, err)
	c := cart.New()
	item := cart.Item{ID: uuid.New(), Name: "x", Price: decimal.NewFromInt(10)}
	c.AddItem(item)

	_, err = submitter.Submit(context.Background(), c, uuid.New(), enums.PaymentMethodCard)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	require.Equal(t, 1, tx.calls)
	require.Equal(t, 1, c.Quantity(item.ID))
}

func TestSubmitPersistsHeaderAndLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.cart()

	sale, err := f.submitter.Submit(ctx, c, f.employee.ID, enums.PaymentMethodCash)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
	require.Equal(t, "250.00", sale.Total.StringFixed(2))
	require.Len(t, sale.Lines, 2)
	require.Equal(t, "Cafe", sale.Lines[0].DishName)
	require.Equal(t, 2, sale.Lines[0].Quantity)

	stored, err := f.repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	require.Equal(t, "Ana", stored.Employee.Name)
	sum := decimal.Zero
	for _, line := range stored.Lines {
		sum = sum.Add(line.Subtotal())
	}
	require.True(t, sum.Equal(stored.Total))
}

func TestSubmitIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.cart()
	// A dish that is not in the catalog violates the line foreign key.
	ghost := cart.Item{ID: uuid.New(), Name: "fantasma", Price: decimal.NewFromInt(5)}
	c.AddItem(ghost)

	_, err := f.submitter.Submit(ctx, c, f.employee.ID, enums.PaymentMethodCard)
	require.Error(t, err)
	require.Equal(t, 3, c.Len())

	var headers int64
	require.NoError(t, f.client.DB().Model(&models.Sale{}).Count(&headers).Error)
	require.Zero(t, headers)
	orphans, err := f.repo.ListOrphanHeaders(ctx)
	require.NoError(t, err)
	require.Empty(t, orphans)
}

func TestCheckoutClearsSessionCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := cart.NewMemoryStore()
	carts, err := cart.NewService(store, dishLoader{db: f.client.DB()})
	require.NoError(t, err)
	checkout, err := NewCheckout(carts, f.submitter, nil)
	require.NoError(t, err)

	_, err = carts.Add(ctx, f.employee.ID, f.coffee.ID)
	require.NoError(t, err)

	sale, err := checkout.Submit(ctx, f.employee.ID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentMethodCard, sale.PaymentMethod)

	current, err := carts.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	require.True(t, current.IsEmpty())

	_, err = checkout.Submit(ctx, f.employee.ID, enums.PaymentMethodCard)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type dishLoader struct{ db *gorm.DB }

func (d dishLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error) {
	var dish models.Dish
	if err := d.db.WithContext(ctx).Where("id_platillo = ?", id).First(&dish).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

func TestListByDayAndTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	loc := time.FixedZone("CST", -6*60*60)
	svc, err := NewService(f.repo, loc)
	require.NoError(t, err)

	at := func(ts time.Time) {
		f.submitter.now = func() time.Time { return ts }
		_, err := f.submitter.Submit(ctx, f.cart(), f.employee.ID, enums.PaymentMethodCash)
		require.NoError(t, err)
	}
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	at(day.Add(8 * time.Hour))
	at(day.Add(23*time.Hour + 30*time.Minute))
	at(day.Add(-time.Minute))
	at(day.Add(24 * time.Hour))

	list, err := svc.ListByDay(ctx, day.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.True(t, list[0].SoldAt.After(list[1].SoldAt))
	require.Equal(t, "Ana", list[0].EmployeeName)

	stats := Stats(list)
	require.Equal(t, 2, stats.Count)
	require.Equal(t, "500.00", stats.Total.StringFixed(2))
	require.Equal(t, "250.00", stats.AverageTicket.StringFixed(2))

	from, to := MonthBounds(day, loc)
	total, err := svc.TotalBetween(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, "1000.00", total.StringFixed(2))

	empty, err := svc.ListByDay(ctx, day.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Empty(t, empty)
	require.True(t, Stats(empty).AverageTicket.IsZero())
}

func TestGetUnknownSale(t *testing.T) {
	f := newFixture(t)
	svc, err := NewService(f.repo, nil)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestExportDayWritesWorkbook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, err := NewService(f.repo, time.UTC)
	require.NoError(t, err)

	now := time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC)
	f.submitter.now = func() time.Time { return now }
	_, err = f.submitter.Submit(ctx, f.cart(), f.employee.ID, enums.PaymentMethodCash)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportDay(ctx, now, &buf))

	book, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	rows := book.Sheets[0].Rows
	require.Len(t, rows, 4)
	require.Equal(t, "Venta", rows[0].Cells[0].Value)
	require.Equal(t, "Total", rows[3].Cells[0].Value)
}
