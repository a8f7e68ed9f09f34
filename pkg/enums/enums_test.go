package enums

import "testing"

func TestParsePaymentMethodAcceptsLegacyLabels(t *testing.T) {
	tests := map[string]PaymentMethod{
		"cash":     PaymentMethodCash,
		" CARD ":   PaymentMethodCard,
		"efectivo": PaymentMethodCash,
		"Tarjeta":  PaymentMethodCard,
	}
	for raw, want := range tests {
		got, err := ParsePaymentMethod(raw)
		if err != nil {
			t.Fatalf("ParsePaymentMethod(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParsePaymentMethod(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Fatal("expected unknown payment method to fail")
	}
}

func TestParseDishCategoryFilter(t *testing.T) {
	for _, raw := range []string{"", "todos", "TODOS"} {
		got, err := ParseDishCategoryFilter(raw)
		if err != nil || got != nil {
			t.Fatalf("filter %q should mean all, got %v %v", raw, got, err)
		}
	}
	got, err := ParseDishCategoryFilter("Postres")
	if err != nil || got == nil || *got != DishCategoryDessert {
		t.Fatalf("expected postres filter, got %v %v", got, err)
	}
	if _, err := ParseDishCategoryFilter("sushi"); err == nil {
		t.Fatal("expected unknown category to fail")
	}
}

func TestEmployeeRoleIsManager(t *testing.T) {
	if !EmployeeRoleManager.IsManager() {
		t.Fatal("gerente should be a manager")
	}
	if EmployeeRoleCashier.IsManager() {
		t.Fatal("cajero should not be a manager")
	}
	if EmployeeRole("chef").IsValid() {
		t.Fatal("unexpected valid role")
	}
}

func TestReservationStatusTransitions(t *testing.T) {
	if ReservationStatusPending.IsTerminal() {
		t.Fatal("pending is not terminal")
	}
	if !ReservationStatusAccepted.IsTerminal() || !ReservationStatusRejected.IsTerminal() {
		t.Fatal("accepted and rejected are terminal")
	}
	filter, err := ParseReservationStatusFilter("all")
	if err != nil || filter != nil {
		t.Fatalf("all should mean no filter, got %v %v", filter, err)
	}
}
