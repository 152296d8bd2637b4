package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Simplici0/spicebooks/internal/costing"
)

var recipeColumns = []string{
	"id", "name", "overheads", "selling_price", "preparation",
	"calories", "protein", "fat", "carbs", "shelf_life", "storage", "is_hidden",
}

// ListRecipes returns every recipe, hidden ones included, ordered by id.
func (s *Store) ListRecipes(ctx context.Context) ([]costing.Recipe, error) {
	rows, err := query(ctx, s.db, s.builder.
		Select(recipeColumns...).
		From("recipes").
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	recipes := []costing.Recipe{}
	index := map[int64]int{}
	for rows.Next() {
		var r costing.Recipe
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Overheads, &r.SellingPrice, &r.Preparation,
			&r.Nutrition.Calories, &r.Nutrition.Protein, &r.Nutrition.Fat, &r.Nutrition.Carbs,
			&r.ShelfLife, &r.Storage, &r.IsHidden,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		r.Ingredients = []costing.IngredientLine{}
		index[r.ID] = len(recipes)
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	rows.Close()

	lines, err := query(ctx, s.db, s.builder.
		Select("recipe_id", "ingredient_name", "quantity", "unit").
		From("recipe_ingredients").
		OrderBy("recipe_id", "position"))
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var (
			recipeID int64
			line     costing.IngredientLine
		)
		if err := lines.Scan(&recipeID, &line.IngredientName, &line.Quantity, &line.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		if i, ok := index[recipeID]; ok {
			recipes[i].Ingredients = append(recipes[i].Ingredients, line)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return recipes, nil
}

// InsertRecipe stores r and its ingredient lines. r.ID must already be assigned.
func (s *Store) InsertRecipe(ctx context.Context, r costing.Recipe) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := exec(ctx, tx, s.builder.
			Insert("recipes").
			Columns(recipeColumns...).
			Values(
				r.ID, r.Name, r.Overheads, r.SellingPrice, r.Preparation,
				r.Nutrition.Calories, r.Nutrition.Protein, r.Nutrition.Fat, r.Nutrition.Carbs,
				r.ShelfLife, r.Storage, r.IsHidden,
			)); err != nil {
			return fmt.Errorf("insert recipe %d: %w", r.ID, err)
		}
		return s.writeLines(ctx, tx, r)
	})
}

// UpdateRecipe replaces the recipe row and all of its ingredient lines.
func (s *Store) UpdateRecipe(ctx context.Context, r costing.Recipe) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := exec(ctx, tx, s.builder.
			Update("recipes").
			SetMap(map[string]any{
				"name":          r.Name,
				"overheads":     r.Overheads,
				"selling_price": r.SellingPrice,
				"preparation":   r.Preparation,
				"calories":      r.Nutrition.Calories,
				"protein":       r.Nutrition.Protein,
				"fat":           r.Nutrition.Fat,
				"carbs":         r.Nutrition.Carbs,
				"shelf_life":    r.ShelfLife,
				"storage":       r.Storage,
				"is_hidden":     r.IsHidden,
				"updated_at":    squirrel.Expr("CURRENT_TIMESTAMP"),
			}).
			Where(squirrel.Eq{"id": r.ID}))
		if err != nil {
			return fmt.Errorf("update recipe %d: %w", r.ID, err)
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		if _, err := exec(ctx, tx, s.builder.
			Delete("recipe_ingredients").
			Where(squirrel.Eq{"recipe_id": r.ID})); err != nil {
			return fmt.Errorf("clear recipe %d ingredients: %w", r.ID, err)
		}
		return s.writeLines(ctx, tx, r)
	})
}

// SetRecipeHidden updates only the visibility flag.
func (s *Store) SetRecipeHidden(ctx context.Context, id int64, hidden bool) error {
	res, err := exec(ctx, s.db, s.builder.
		Update("recipes").
		Set("is_hidden", hidden).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("set recipe %d visibility: %w", id, err)
	}
	return mustAffect(res)
}

func (s *Store) writeLines(ctx context.Context, tx *sql.Tx, r costing.Recipe) error {
	if len(r.Ingredients) == 0 {
		return nil
	}
	ins := s.builder.
		Insert("recipe_ingredients").
		Columns("recipe_id", "position", "ingredient_name", "quantity", "unit")
	for i, line := range r.Ingredients {
		ins = ins.Values(r.ID, i, line.IngredientName, line.Quantity, string(line.Unit))
	}
	if _, err := exec(ctx, tx, ins); err != nil {
		return fmt.Errorf("insert recipe %d ingredients: %w", r.ID, err)
	}
	return nil
}
