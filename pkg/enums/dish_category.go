package enums

import (
	"fmt"
	"strings"
)

// DishCategory groups menu items on the POS and storefront.
type DishCategory string

const (
	DishCategoryGeneral DishCategory = "general"
	DishCategoryDrinks  DishCategory = "bebidas"
	DishCategoryMeals   DishCategory = "comidas"
	DishCategoryDessert DishCategory = "postres"
	DishCategoryBakery  DishCategory = "panaderia"
	DishCategorySnacks  DishCategory = "snacks"
)

// DishCategoryAll is the filter value meaning "every category".
const DishCategoryAll = "todos"

var validDishCategories = []DishCategory{
	DishCategoryGeneral,
	DishCategoryDrinks,
	DishCategoryMeals,
	DishCategoryDessert,
	DishCategoryBakery,
	DishCategorySnacks,
}

// DishCategories returns the known categories in display order.
func DishCategories() []DishCategory {
	out := make([]DishCategory, len(validDishCategories))
	copy(out, validDishCategories)
	return out
}

func (c DishCategory) String() string {
	return string(c)
}

func (c DishCategory) IsValid() bool {
	for _, candidate := range validDishCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseDishCategory converts raw input into a DishCategory.
func ParseDishCategory(value string) (DishCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validDishCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dish category %q", value)
}

// ParseDishCategoryFilter parses a listing filter. An empty value or
// DishCategoryAll yields nil, meaning no filter.
func ParseDishCategoryFilter(value string) (*DishCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" || normalized == DishCategoryAll {
		return nil, nil
	}
	category, err := ParseDishCategory(normalized)
	if err != nil {
		return nil, err
	}
	return &category, nil
}
