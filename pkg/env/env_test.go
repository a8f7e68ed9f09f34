package env

import "testing"

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("LITCAFE_TEST_VALUE", "  caja-2 ")
	if got := Get("LITCAFE_TEST_VALUE", "x"); got != "caja-2" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("LITCAFE_TEST_VALUE", "   ")
	if got := Get("LITCAFE_TEST_VALUE", "x"); got != "x" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestOneOf(t *testing.T) {
	t.Setenv("LITCAFE_TEST_FORMAT", "JSON")
	if got := OneOf("LITCAFE_TEST_FORMAT", "table", "table", "json"); got != "json" {
		t.Fatalf("expected json, got %q", got)
	}
	t.Setenv("LITCAFE_TEST_FORMAT", "yaml")
	if got := OneOf("LITCAFE_TEST_FORMAT", "table", "table", "json"); got != "table" {
		t.Fatalf("expected fallback for unknown value, got %q", got)
	}
}
