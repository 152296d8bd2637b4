package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/costing"
)

// Recipes lists recipes, optionally including hidden ones.
func (s *Service) Recipes(ctx context.Context, includeHidden bool) (Result[[]costing.Recipe], error) {
	var res Result[[]costing.Recipe]
	all, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	if includeHidden {
		res.Value = all
	} else {
		res.Value = costing.Visible(all)
	}
	return res, nil
}

// Recipe returns a single recipe, hidden or not.
func (s *Service) Recipe(ctx context.Context, id int64) (Result[costing.Recipe], error) {
	var res Result[costing.Recipe]
	all, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	r, ok := costing.FindRecipe(all, id)
	if !ok {
		return res, apperror.NewNotFound("recipe", id)
	}
	res.Value = r
	return res, nil
}

// CreateRecipe stores a new recipe under the next free id.
func (s *Service) CreateRecipe(ctx context.Context, r costing.Recipe) (Result[costing.Recipe], error) {
	var res Result[costing.Recipe]
	r, err := normalizeRecipe(r)
	if err != nil {
		return res, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	all, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	next, created := costing.AddRecipe(all, r)
	s.recipes.Set(next, s.now())

	s.warnUnresolved(ctx, created, &res)
	persistHeld(ctx, s, &s.recipes, recipeKey(created.ID), recipeOp(created), &res, putRecipe(created), func(ctx context.Context) error {
		return s.store.InsertRecipe(ctx, created)
	})
	mirrorWrite(ctx, s, recipeOp(created), &res, func(ctx context.Context, m Mirror) error {
		return m.UpsertRecipe(ctx, created)
	})

	res.Value = created
	return res, nil
}

// UpdateRecipe replaces the recipe with r.ID, keeping its visibility flag.
func (s *Service) UpdateRecipe(ctx context.Context, r costing.Recipe) (Result[costing.Recipe], error) {
	var res Result[costing.Recipe]
	r, err := normalizeRecipe(r)
	if err != nil {
		return res, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	all, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	current, ok := costing.FindRecipe(all, r.ID)
	if !ok {
		return res, apperror.NewNotFound("recipe", r.ID)
	}
	r.IsHidden = current.IsHidden

	next, _ := costing.ReplaceRecipe(all, r)
	s.recipes.Set(next, s.now())

	s.warnUnresolved(ctx, r, &res)
	persistHeld(ctx, s, &s.recipes, recipeKey(r.ID), recipeOp(r), &res, putRecipe(r), func(ctx context.Context) error {
		return s.store.UpdateRecipe(ctx, r)
	})
	mirrorWrite(ctx, s, recipeOp(r), &res, func(ctx context.Context, m Mirror) error {
		return m.UpsertRecipe(ctx, r)
	})

	res.Value = r
	return res, nil
}

// ToggleRecipeVisibility hides a visible recipe or shows a hidden one.
func (s *Service) ToggleRecipeVisibility(ctx context.Context, id int64) (Result[costing.Recipe], error) {
	var res Result[costing.Recipe]

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	all, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	next, ok := costing.ToggleVisibility(all, id)
	if !ok {
		return res, apperror.NewNotFound("recipe", id)
	}
	s.recipes.Set(next, s.now())
	r, _ := costing.FindRecipe(next, id)

	hidden := r.IsHidden
	setHidden := func(all []costing.Recipe) []costing.Recipe {
		cur, ok := costing.FindRecipe(all, id)
		if !ok {
			return all
		}
		cur.IsHidden = hidden
		next, _ := costing.ReplaceRecipe(all, cur)
		return next
	}
	persistHeld(ctx, s, &s.recipes, recipeKey(id), recipeOp(r), &res, setHidden, func(ctx context.Context) error {
		return s.store.SetRecipeHidden(ctx, id, hidden)
	})
	mirrorWrite(ctx, s, recipeOp(r), &res, func(ctx context.Context, m Mirror) error {
		return m.UpsertRecipe(ctx, r)
	})

	res.Value = r
	return res, nil
}

// CostRecipe rolls up the cost of a recipe against the current catalog.
func (s *Service) CostRecipe(ctx context.Context, id int64) (Result[costing.Breakdown], error) {
	var res Result[costing.Breakdown]
	all, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	r, ok := costing.FindRecipe(all, id)
	if !ok {
		return res, apperror.NewNotFound("recipe", id)
	}
	cat, err := load(ctx, s, "ingredients", &s.catalog, s.store.ListIngredients, &res)
	if err != nil {
		return res, err
	}

	b := costing.Calculate(r, cat)
	breakdownWarnings(b, &res)
	res.Value = b
	return res, nil
}

// PriceList costs every visible recipe.
func (s *Service) PriceList(ctx context.Context) (Result[[]costing.Breakdown], error) {
	var res Result[[]costing.Breakdown]
	all, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	cat, err := load(ctx, s, "ingredients", &s.catalog, s.store.ListIngredients, &res)
	if err != nil {
		return res, err
	}

	visible := costing.Visible(all)
	res.Value = make([]costing.Breakdown, 0, len(visible))
	for _, r := range visible {
		b := costing.Calculate(r, cat)
		breakdownWarnings(b, &res)
		res.Value = append(res.Value, b)
	}
	return res, nil
}

func breakdownWarnings[V any](b costing.Breakdown, res *Result[V]) {
	for _, name := range b.Unresolved {
		res.warn(fmt.Sprintf("%s: ingredient %q is not in the catalog and costs 0", b.RecipeName, name))
	}
	if !b.HasMargin {
		res.warn(fmt.Sprintf("%s: selling price is 0, margin not computed", b.RecipeName))
	}
}

// warnUnresolved flags ingredient lines that do not match a catalog name.
// A catalog read failure is ignored here; the recipe write itself goes ahead.
func (s *Service) warnUnresolved(ctx context.Context, r costing.Recipe, res *Result[costing.Recipe]) {
	var scratch Result[costing.Catalog]
	cat, err := load(ctx, s, "ingredients", &s.catalog, s.store.ListIngredients, &scratch)
	if err != nil {
		return
	}
	for _, line := range costing.Calculate(r, cat).Unresolved {
		res.warn(fmt.Sprintf("ingredient %q is not in the catalog and costs 0", line))
	}
}

func normalizeRecipe(r costing.Recipe) (costing.Recipe, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return r, apperror.NewValidation("recipe name is required")
	}
	if r.Overheads < 0 || r.SellingPrice < 0 {
		return r, apperror.NewValidation("overheads and selling price must be greater than or equal to 0")
	}
	lines := make([]costing.IngredientLine, 0, len(r.Ingredients))
	for i, line := range r.Ingredients {
		line.IngredientName = strings.TrimSpace(line.IngredientName)
		if line.IngredientName == "" {
			return r, apperror.NewValidation("ingredient name is required").WithDetail("line", i)
		}
		unit, err := costing.ParseUnit(string(line.Unit))
		if err != nil {
			return r, apperror.NewValidation(err.Error()).WithDetail("line", i)
		}
		if line.Quantity < 0 {
			return r, apperror.NewValidation("quantity must be greater than or equal to 0").WithDetail("line", i)
		}
		line.Unit = unit
		lines = append(lines, line)
	}
	r.Ingredients = lines
	return r, nil
}

func recipeOp(r costing.Recipe) string {
	return fmt.Sprintf("recipe %d (%s)", r.ID, r.Name)
}

func recipeKey(id int64) string {
	return fmt.Sprintf("recipe:%d", id)
}

// putRecipe replaces the recipe with r.ID or appends r when it is missing.
func putRecipe(r costing.Recipe) func([]costing.Recipe) []costing.Recipe {
	return func(all []costing.Recipe) []costing.Recipe {
		if next, ok := costing.ReplaceRecipe(all, r); ok {
			return next
		}
		next := make([]costing.Recipe, len(all), len(all)+1)
		copy(next, all)
		return append(next, r)
	}
}
