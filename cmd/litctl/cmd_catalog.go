package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/litcafe/backoffice/internal/catalog"
	"github.com/litcafe/backoffice/internal/inventory"
	"github.com/litcafe/backoffice/internal/suppliers"
	"github.com/litcafe/backoffice/pkg/enums"
)

func newMenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Inspect the menu",
	}
	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List dishes, optionally filtered to one available category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := enums.ParseDishCategoryFilter(category)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				svc, err := catalog.NewService(catalog.NewRepository(a.db.DB()))
				if err != nil {
					return err
				}
				var dishes []catalog.DishDTO
				if category == "" {
					dishes, err = svc.List(ctx)
				} else {
					dishes, err = svc.ListAvailable(ctx, filter)
				}
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(dishes))
				for _, d := range dishes {
					rows = append(rows, []string{d.Name, d.Category.String(), d.Price.StringFixed(2), yesNo(d.Available)})
				}
				return render(cmd, dishes, []string{"NAME", "CATEGORY", "PRICE", "AVAILABLE"}, rows)
			})
		},
	}
	list.Flags().StringVar(&category, "category", "", "category filter; \"todos\" lists every available dish")
	cmd.AddCommand(list)
	return cmd
}

func newInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inspect ingredient stock",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "low-stock",
		Short: "List ingredients at or below their minimum",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				conn := a.db.DB()
				svc, err := inventory.NewService(inventory.NewRepository(conn), suppliers.NewRepository(conn))
				if err != nil {
					return err
				}
				items, err := svc.LowStock(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					supplier := "-"
					if item.SupplierName != nil {
						supplier = *item.SupplierName
					}
					rows = append(rows, []string{item.Name, item.Stock.String(), item.MinStock.String(), item.UnitOfMeasure, supplier})
				}
				return render(cmd, items, []string{"INGREDIENT", "STOCK", "MIN", "UNIT", "SUPPLIER"}, rows)
			})
		},
	})
	return cmd
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
