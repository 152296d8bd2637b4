package books

import (
	"context"
	"strings"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/costing"
)

// IngredientChange reports the outcome of a catalog write.
type IngredientChange struct {
	Ingredient costing.MasterIngredient `json:"ingredient"`
	Added      bool                     `json:"added"`
}

// Catalog returns the master ingredient list.
func (s *Service) Catalog(ctx context.Context) (Result[costing.Catalog], error) {
	var res Result[costing.Catalog]
	cat, err := load(ctx, s, "ingredients", &s.catalog, s.store.ListIngredients, &res)
	if err != nil {
		return res, err
	}
	res.Value = cat
	return res, nil
}

// AddIngredient adds name to the catalog. When an ingredient with the same name
// ignoring case already exists nothing is written and Added is false.
func (s *Service) AddIngredient(ctx context.Context, name string, pricePerKg float64) (Result[IngredientChange], error) {
	var res Result[IngredientChange]
	name = strings.TrimSpace(name)
	if name == "" {
		return res, apperror.NewValidation("ingredient name is required")
	}
	if pricePerKg < 0 {
		return res, apperror.NewValidation("price per kg must be greater than or equal to 0")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cat, err := load(ctx, s, "ingredients", &s.catalog, s.store.ListIngredients, &res)
	if err != nil {
		return res, err
	}

	ing := costing.MasterIngredient{Name: name, PricePerKg: pricePerKg}
	if costing.HasIngredient(cat, name) {
		res.Value = IngredientChange{Ingredient: ing, Added: false}
		return res, nil
	}

	s.catalog.Set(costing.AddMasterIngredient(cat, name, pricePerKg), s.now())
	addOnce := func(cat costing.Catalog) costing.Catalog {
		if costing.HasIngredient(cat, name) {
			return cat
		}
		return costing.AddMasterIngredient(cat, name, pricePerKg)
	}
	persistHeld(ctx, s, &s.catalog, ingredientKey(name), "ingredient "+name, &res, addOnce, func(ctx context.Context) error {
		return s.store.InsertIngredient(ctx, ing)
	})
	mirrorWrite(ctx, s, "ingredient "+name, &res, func(ctx context.Context, m Mirror) error {
		return m.UpsertIngredient(ctx, ing)
	})

	res.Value = IngredientChange{Ingredient: ing, Added: true}
	return res, nil
}

// UpdateIngredientPrice changes the price of the ingredient named exactly name.
// Name matching is case-sensitive here, unlike AddIngredient.
func (s *Service) UpdateIngredientPrice(ctx context.Context, name string, pricePerKg float64) (Result[costing.MasterIngredient], error) {
	var res Result[costing.MasterIngredient]
	if pricePerKg < 0 {
		return res, apperror.NewValidation("price per kg must be greater than or equal to 0")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cat, err := load(ctx, s, "ingredients", &s.catalog, s.store.ListIngredients, &res)
	if err != nil {
		return res, err
	}
	found := false
	for _, ing := range cat {
		if ing.Name == name {
			found = true
			break
		}
	}
	if !found {
		return res, apperror.NewNotFound("ingredient", name)
	}

	s.catalog.Set(costing.UpdateMasterIngredientPrice(cat, name, pricePerKg), s.now())
	ing := costing.MasterIngredient{Name: name, PricePerKg: pricePerKg}
	reprice := func(cat costing.Catalog) costing.Catalog {
		return costing.UpdateMasterIngredientPrice(cat, name, pricePerKg)
	}
	persistHeld(ctx, s, &s.catalog, ingredientKey(name), "price of "+name, &res, reprice, func(ctx context.Context) error {
		return s.store.UpdateIngredientPrice(ctx, name, pricePerKg)
	})
	mirrorWrite(ctx, s, "price of "+name, &res, func(ctx context.Context, m Mirror) error {
		return m.UpsertIngredient(ctx, ing)
	})

	res.Value = ing
	return res, nil
}

func ingredientKey(name string) string {
	return "ingredient:" + strings.ToLower(name)
}
