package costing

import "testing"

func TestAddRecipe_AssignsMaxPlusOne(t *testing.T) {
	recipes := []Recipe{{ID: 3, Name: "Karivepaku Podi"}, {ID: 7, Name: "Kandi Podi"}}

	next, added := AddRecipe(recipes, Recipe{ID: 99, Name: "Putnalu Podi"})

	if added.ID != 8 {
		t.Fatalf("expected id 8, got %d", added.ID)
	}
	if len(next) != 3 || len(recipes) != 2 {
		t.Fatalf("unexpected lengths: next=%d input=%d", len(next), len(recipes))
	}
}

func TestAddRecipe_EmptyListStartsAtOne(t *testing.T) {
	_, added := AddRecipe(nil, Recipe{Name: "Sambar Powder"})
	if added.ID != 1 {
		t.Fatalf("expected id 1, got %d", added.ID)
	}
}

func TestToggleVisibility(t *testing.T) {
	recipes := []Recipe{{ID: 1, Name: "Rasam Powder"}}

	hidden, ok := ToggleVisibility(recipes, 1)
	if !ok || !hidden[0].IsHidden {
		t.Fatalf("expected recipe to be hidden: %+v", hidden)
	}
	if recipes[0].IsHidden {
		t.Fatalf("input list was mutated")
	}
	if len(Visible(hidden)) != 0 {
		t.Fatalf("hidden recipe must be filtered out")
	}

	if _, ok := ToggleVisibility(recipes, 42); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestReplaceRecipe(t *testing.T) {
	recipes := []Recipe{{ID: 1, Name: "Rasam Powder", SellingPrice: 300}}

	next, ok := ReplaceRecipe(recipes, Recipe{ID: 1, Name: "Rasam Powder", SellingPrice: 320})
	if !ok || next[0].SellingPrice != 320 {
		t.Fatalf("recipe not replaced: %+v", next)
	}
	if recipes[0].SellingPrice != 300 {
		t.Fatalf("input list was mutated")
	}
}
