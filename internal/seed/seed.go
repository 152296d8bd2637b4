// Package seed loads a starter spice catalog into an empty database.
package seed

import (
	"context"
	"database/sql"
	"fmt"
)

const sampleRecipeName = "Sambar Powder"

type ingredientSeed struct {
	name       string
	pricePerKg float64
}

type lineSeed struct {
	ingredient string
	quantity   float64
	unit       string
}

var defaultIngredients = []ingredientSeed{
	{"Coriander Seeds", 186},
	{"Red Chilies", 200},
	{"Toor Dal", 140},
	{"Chana Dal", 120},
	{"Cumin", 420},
	{"Fenugreek", 160},
	{"Black Pepper", 780},
	{"Curry Leaves", 250},
	{"Asafoetida", 2400},
	{"Salt", 20},
}

var sampleRecipeLines = []lineSeed{
	{"Coriander Seeds", 300, "g"},
	{"Red Chilies", 200, "g"},
	{"Toor Dal", 100, "g"},
	{"Chana Dal", 100, "g"},
	{"Cumin", 30, "g"},
	{"Fenugreek", 20, "g"},
	{"Black Pepper", 20, "g"},
	{"Curry Leaves", 20, "g"},
	{"Asafoetida", 5, "g"},
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run inserts the starter catalog in an idempotent way. Existing rows are never touched.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureIngredients(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSampleRecipe(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureIngredients(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for _, ing := range defaultIngredients {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (name, price_per_kg)
			VALUES (?, ?)
			ON CONFLICT (name) DO NOTHING
		`, ing.name, ing.pricePerKg)
		if err != nil {
			return fmt.Errorf("insert ingredient %s: %w", ing.name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.Inserts++
		}
	}
	return nil
}

func ensureSampleRecipe(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM recipes WHERE name = ? LIMIT 1)`, sampleRecipeName).Scan(&exists); err != nil {
		return fmt.Errorf("check sample recipe existence: %w", err)
	}
	if exists {
		return nil
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM recipes`).Scan(&id); err != nil {
		return fmt.Errorf("next recipe id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (id, name, overheads, selling_price, preparation, shelf_life, storage)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, sampleRecipeName, 90, 350, "Dry roast each ingredient separately, cool and grind fine.", "6 months", "Airtight jar, away from moisture"); err != nil {
		return fmt.Errorf("insert sample recipe: %w", err)
	}

	for i, line := range sampleRecipeLines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, position, ingredient_name, quantity, unit)
			VALUES (?, ?, ?, ?, ?)
		`, id, i, line.ingredient, line.quantity, line.unit); err != nil {
			return fmt.Errorf("insert sample recipe line %s: %w", line.ingredient, err)
		}
	}
	stats.Inserts++
	return nil
}
