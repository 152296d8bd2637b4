package costing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrZeroSellingPrice is returned by ProfitMarginPercent when the recipe has no selling price.
var ErrZeroSellingPrice = errors.New("profit margin: division by zero selling price")

// Unit is the unit an ingredient line quantity is expressed in.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
)

// ParseUnit converts user input into a Unit.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitGram, UnitKilogram, UnitMilliliter, UnitLiter:
		return u, nil
	default:
		return "", fmt.Errorf("unit must be one of g, kg, ml, l")
	}
}

// KgEquivalent converts q to kilograms. Liters are treated as kilograms.
func (u Unit) KgEquivalent(q float64) float64 {
	switch u {
	case UnitGram, UnitMilliliter:
		return q / 1000.0
	case UnitKilogram, UnitLiter:
		return q
	default:
		return 0
	}
}

// MasterIngredient is a priced raw ingredient in the catalog.
type MasterIngredient struct {
	Name       string  `json:"name"`
	PricePerKg float64 `json:"price_per_kg"`
}

// Catalog is the master ingredient price table.
type Catalog []MasterIngredient

// IngredientLine is one ingredient of a recipe, referenced by name.
type IngredientLine struct {
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
	Unit           Unit    `json:"unit"`
}

// Nutrition holds the per-100g nutrition facts printed on the label.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Recipe describes a product formulation. Costs are in currency per kilogram.
type Recipe struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Ingredients  []IngredientLine `json:"ingredients"`
	Overheads    float64          `json:"overheads"`
	SellingPrice float64          `json:"selling_price"`
	Preparation  string           `json:"preparation"`
	Nutrition    Nutrition        `json:"nutrition"`
	ShelfLife    string           `json:"shelf_life"`
	Storage      string           `json:"storage"`
	IsHidden     bool             `json:"is_hidden"`
}

// ResolvePricePerKg returns the catalog price for name, or 0 when the name is unknown.
func ResolvePricePerKg(name string, catalog Catalog) float64 {
	if price, ok := lookup(name, catalog); ok {
		return price
	}
	return 0
}

func lookup(name string, catalog Catalog) (float64, bool) {
	for _, ing := range catalog {
		if ing.Name == name {
			return ing.PricePerKg, true
		}
	}
	return 0, false
}

// CostOfLine computes the currency cost of a single ingredient line.
func CostOfLine(line IngredientLine, catalog Catalog) float64 {
	return line.Unit.KgEquivalent(line.Quantity) * ResolvePricePerKg(line.IngredientName, catalog)
}

// TotalIngredientCost sums the cost of every ingredient line without intermediate rounding.
func TotalIngredientCost(recipe Recipe, catalog Catalog) float64 {
	total := 0.0
	for _, line := range recipe.Ingredients {
		total += CostOfLine(line, catalog)
	}
	return total
}

// FinalCost is the ingredient cost plus the flat overheads.
func FinalCost(recipe Recipe, catalog Catalog) float64 {
	return TotalIngredientCost(recipe, catalog) + recipe.Overheads
}

// ProfitMarginPercent returns (sellingPrice - finalCost) / sellingPrice * 100.
// Callers must reject a zero selling price before calling; ErrZeroSellingPrice is returned otherwise.
func ProfitMarginPercent(recipe Recipe, catalog Catalog) (float64, error) {
	if recipe.SellingPrice == 0 {
		return 0, ErrZeroSellingPrice
	}
	return (recipe.SellingPrice - FinalCost(recipe, catalog)) / recipe.SellingPrice * 100, nil
}

// AddMasterIngredient appends a new ingredient unless one with the same name
// (compared case-insensitively) already exists, in which case the catalog is
// returned unchanged.
func AddMasterIngredient(catalog Catalog, name string, pricePerKg float64) Catalog {
	if HasIngredient(catalog, name) {
		return catalog
	}
	next := make(Catalog, len(catalog), len(catalog)+1)
	copy(next, catalog)
	return append(next, MasterIngredient{Name: name, PricePerKg: pricePerKg})
}

// HasIngredient reports whether catalog holds name under case-insensitive comparison.
func HasIngredient(catalog Catalog, name string) bool {
	for _, ing := range catalog {
		if strings.EqualFold(ing.Name, name) {
			return true
		}
	}
	return false
}

// UpdateMasterIngredientPrice sets the price of the exactly-named ingredient.
// An unknown name leaves the catalog unchanged.
func UpdateMasterIngredientPrice(catalog Catalog, name string, newPrice float64) Catalog {
	next := make(Catalog, len(catalog))
	copy(next, catalog)
	for i := range next {
		if next[i].Name == name {
			next[i].PricePerKg = newPrice
		}
	}
	return next
}

// Round rounds v half away from zero for display. Stored values are never rounded.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
