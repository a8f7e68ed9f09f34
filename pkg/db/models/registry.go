package models

// All lists every persisted model in dependency order. It backs the sqlite
// schema used by local runs and tests; postgres uses the goose migrations.
func All() []any {
	return []any{
		&Employee{},
		&Supplier{},
		&Ingredient{},
		&Dish{},
		&Sale{},
		&SaleLine{},
		&Reservation{},
	}
}
