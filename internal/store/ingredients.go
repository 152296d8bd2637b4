package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Simplici0/spicebooks/internal/costing"
)

// ListIngredients returns the catalog in insertion order.
func (s *Store) ListIngredients(ctx context.Context) (costing.Catalog, error) {
	rows, err := query(ctx, s.db, s.builder.
		Select("name", "price_per_kg").
		From("ingredients").
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	catalog := costing.Catalog{}
	for rows.Next() {
		var ing costing.MasterIngredient
		if err := rows.Scan(&ing.Name, &ing.PricePerKg); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		catalog = append(catalog, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	return catalog, nil
}

// InsertIngredient adds a catalog entry. The name column is unique ignoring case.
func (s *Store) InsertIngredient(ctx context.Context, ing costing.MasterIngredient) error {
	if _, err := exec(ctx, s.db, s.builder.
		Insert("ingredients").
		Columns("name", "price_per_kg").
		Values(ing.Name, ing.PricePerKg)); err != nil {
		return fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
	}
	return nil
}

// UpdateIngredientPrice sets the price of the ingredient named exactly name.
func (s *Store) UpdateIngredientPrice(ctx context.Context, name string, price float64) error {
	res, err := exec(ctx, s.db, s.builder.
		Update("ingredients").
		Set("price_per_kg", price).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		// The column collates NOCASE; compare bytes to keep price updates case-sensitive.
		Where(squirrel.Expr("name = ? COLLATE BINARY", name)))
	if err != nil {
		return fmt.Errorf("update ingredient price %q: %w", name, err)
	}
	return mustAffect(res)
}
