package costing

import (
	"errors"
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func sambarPowder() (Recipe, Catalog) {
	catalog := Catalog{
		{Name: "Coriander Seeds", PricePerKg: 186},
		{Name: "Red Chilies", PricePerKg: 200},
	}
	recipe := Recipe{
		ID:   1,
		Name: "Sambar Powder",
		Ingredients: []IngredientLine{
			{IngredientName: "Coriander Seeds", Quantity: 300, Unit: UnitGram},
			{IngredientName: "Red Chilies", Quantity: 200, Unit: UnitGram},
		},
		Overheads:    90,
		SellingPrice: 350,
	}
	return recipe, catalog
}

func TestSambarPowderEndToEnd(t *testing.T) {
	recipe, catalog := sambarPowder()

	nearlyEqual(t, "totalIngredientCost", TotalIngredientCost(recipe, catalog), 95.8)
	nearlyEqual(t, "finalCost", FinalCost(recipe, catalog), 185.8)

	margin, err := ProfitMarginPercent(recipe, catalog)
	if err != nil {
		t.Fatalf("ProfitMarginPercent: %v", err)
	}
	nearlyEqual(t, "margin", margin, (350-185.8)/350*100)
	if got := Round(margin, 2); got != 46.91 {
		t.Fatalf("rounded margin = %v, want 46.91", got)
	}
}

func TestCostOfLine_SmallUnitsDivideByThousand(t *testing.T) {
	catalog := Catalog{{Name: "Sesame Oil", PricePerKg: 420}}
	for _, unit := range []Unit{UnitGram, UnitMilliliter} {
		line := IngredientLine{IngredientName: "Sesame Oil", Quantity: 250, Unit: unit}
		nearlyEqual(t, string(unit), CostOfLine(line, catalog), (250.0/1000)*420)
	}
}

func TestCostOfLine_LargeUnitsMultiplyDirectly(t *testing.T) {
	catalog := Catalog{{Name: "Sesame Oil", PricePerKg: 420}}
	for _, unit := range []Unit{UnitKilogram, UnitLiter} {
		line := IngredientLine{IngredientName: "Sesame Oil", Quantity: 1.5, Unit: unit}
		nearlyEqual(t, string(unit), CostOfLine(line, catalog), 1.5*420)
	}
}

func TestResolvePricePerKg_UnknownIsZero(t *testing.T) {
	catalog := Catalog{{Name: "Salt", PricePerKg: 20}}

	if got := ResolvePricePerKg("Turmeric", catalog); got != 0 {
		t.Fatalf("unknown ingredient price = %v, want 0", got)
	}
	if got := ResolvePricePerKg("salt", catalog); got != 0 {
		t.Fatalf("lookup must be case-sensitive, got %v", got)
	}
	if got := ResolvePricePerKg("Salt", nil); got != 0 {
		t.Fatalf("nil catalog price = %v, want 0", got)
	}
}

func TestFinalCost_IsIngredientCostPlusOverheads(t *testing.T) {
	recipe, catalog := sambarPowder()
	recipe.Ingredients = append(recipe.Ingredients, IngredientLine{IngredientName: "Hing", Quantity: 5, Unit: UnitGram})

	if FinalCost(recipe, catalog) != TotalIngredientCost(recipe, catalog)+recipe.Overheads {
		t.Fatalf("finalCost must equal total + overheads exactly")
	}
}

func TestProfitMarginPercent_ZeroSellingPrice(t *testing.T) {
	recipe, catalog := sambarPowder()
	recipe.SellingPrice = 0

	if _, err := ProfitMarginPercent(recipe, catalog); !errors.Is(err, ErrZeroSellingPrice) {
		t.Fatalf("expected ErrZeroSellingPrice, got %v", err)
	}
}

func TestAddMasterIngredient_CaseInsensitiveCollision(t *testing.T) {
	catalog := AddMasterIngredient(nil, "Salt", 20)
	catalog = AddMasterIngredient(catalog, "salt", 99)

	if len(catalog) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(catalog), catalog)
	}
	if catalog[0].Name != "Salt" || catalog[0].PricePerKg != 20 {
		t.Fatalf("original entry must be kept, got %+v", catalog[0])
	}
}

func TestAddMasterIngredient_DoesNotMutateInput(t *testing.T) {
	base := make(Catalog, 1, 4)
	base[0] = MasterIngredient{Name: "Salt", PricePerKg: 20}

	next := AddMasterIngredient(base, "Jaggery", 70)
	next[0].PricePerKg = 1

	if base[0].PricePerKg != 20 {
		t.Fatalf("input catalog was mutated: %+v", base)
	}
	if len(next) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(next))
	}
}

func TestUpdateMasterIngredientPrice(t *testing.T) {
	catalog := Catalog{{Name: "Salt", PricePerKg: 20}, {Name: "Tamarind", PricePerKg: 160}}

	updated := UpdateMasterIngredientPrice(catalog, "Tamarind", 175)
	if updated[1].PricePerKg != 175 {
		t.Fatalf("price not updated: %+v", updated)
	}
	if catalog[1].PricePerKg != 160 {
		t.Fatalf("input catalog was mutated: %+v", catalog)
	}

	unchanged := UpdateMasterIngredientPrice(catalog, "tamarind", 1)
	if unchanged[1].PricePerKg != 160 {
		t.Fatalf("case-insensitive match must be a no-op, got %+v", unchanged)
	}
}

func TestCalculate_ReportsUnresolvedLines(t *testing.T) {
	recipe, catalog := sambarPowder()
	recipe.Ingredients = append(recipe.Ingredients, IngredientLine{IngredientName: "Curry Leavs", Quantity: 50, Unit: UnitGram})

	b := Calculate(recipe, catalog)

	if len(b.Unresolved) != 1 || b.Unresolved[0] != "Curry Leavs" {
		t.Fatalf("unexpected unresolved list: %v", b.Unresolved)
	}
	if b.Lines[2].Resolved || b.Lines[2].Cost != 0 {
		t.Fatalf("unresolved line must cost zero: %+v", b.Lines[2])
	}
	nearlyEqual(t, "finalCost", b.FinalCost, 185.8)
	nearlyEqual(t, "profit", b.Profit, 350-185.8)
	if !b.HasMargin {
		t.Fatalf("expected margin to be computed")
	}
}

func TestCalculate_ZeroSellingPriceHasNoMargin(t *testing.T) {
	recipe, catalog := sambarPowder()
	recipe.SellingPrice = 0

	b := Calculate(recipe, catalog)
	if b.HasMargin || b.MarginPercent != 0 {
		t.Fatalf("expected no margin, got %+v", b)
	}
}

func TestParseUnit(t *testing.T) {
	if u, err := ParseUnit(" KG "); err != nil || u != UnitKilogram {
		t.Fatalf("ParseUnit(KG) = %q, %v", u, err)
	}
	if _, err := ParseUnit("cup"); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
}
