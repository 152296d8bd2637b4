package costing

// NextRecipeID returns the largest recipe id plus one.
func NextRecipeID(recipes []Recipe) int64 {
	var highest int64
	for _, r := range recipes {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest + 1
}

// AddRecipe appends r with a freshly assigned id and returns the new list and the stored recipe.
func AddRecipe(recipes []Recipe, r Recipe) ([]Recipe, Recipe) {
	r.ID = NextRecipeID(recipes)
	r.Ingredients = cloneLines(r.Ingredients)
	next := make([]Recipe, len(recipes), len(recipes)+1)
	copy(next, recipes)
	return append(next, r), r
}

// ReplaceRecipe swaps the recipe that has r.ID. The bool is false when no recipe matched.
func ReplaceRecipe(recipes []Recipe, r Recipe) ([]Recipe, bool) {
	idx := indexOf(recipes, r.ID)
	if idx < 0 {
		return recipes, false
	}
	next := make([]Recipe, len(recipes))
	copy(next, recipes)
	r.Ingredients = cloneLines(r.Ingredients)
	next[idx] = r
	return next, true
}

// ToggleVisibility flips IsHidden on the recipe with id.
func ToggleVisibility(recipes []Recipe, id int64) ([]Recipe, bool) {
	idx := indexOf(recipes, id)
	if idx < 0 {
		return recipes, false
	}
	next := make([]Recipe, len(recipes))
	copy(next, recipes)
	next[idx].IsHidden = !next[idx].IsHidden
	return next, true
}

// Visible filters out hidden recipes.
func Visible(recipes []Recipe) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if !r.IsHidden {
			out = append(out, r)
		}
	}
	return out
}

// FindRecipe returns the recipe with id.
func FindRecipe(recipes []Recipe, id int64) (Recipe, bool) {
	idx := indexOf(recipes, id)
	if idx < 0 {
		return Recipe{}, false
	}
	return recipes[idx], true
}

func indexOf(recipes []Recipe, id int64) int {
	for i, r := range recipes {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneLines(lines []IngredientLine) []IngredientLine {
	if lines == nil {
		return nil
	}
	out := make([]IngredientLine, len(lines))
	copy(out, lines)
	return out
}
