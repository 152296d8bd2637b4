package costing

// LineCost is the costed view of one ingredient line.
type LineCost struct {
	IngredientName string  `json:"ingredient_name"`
	QuantityKg     float64 `json:"quantity_kg"`
	PricePerKg     float64 `json:"price_per_kg"`
	Cost           float64 `json:"cost"`
	Resolved       bool    `json:"resolved"`
}

// Breakdown contains every intermediate value of a recipe costing.
type Breakdown struct {
	RecipeID            int64      `json:"recipe_id"`
	RecipeName          string     `json:"recipe_name"`
	Lines               []LineCost `json:"lines"`
	TotalIngredientCost float64    `json:"total_ingredient_cost"`
	Overheads           float64    `json:"overheads"`
	FinalCost           float64    `json:"final_cost"`
	SellingPrice        float64    `json:"selling_price"`
	Profit              float64    `json:"profit"`
	MarginPercent       float64    `json:"margin_percent"`
	HasMargin           bool       `json:"has_margin"`
	Unresolved          []string   `json:"unresolved,omitempty"`
}

// Calculate costs a recipe against catalog. A zero selling price yields
// HasMargin=false instead of an error so listings can still be rendered.
func Calculate(recipe Recipe, catalog Catalog) Breakdown {
	b := Breakdown{
		RecipeID:     recipe.ID,
		RecipeName:   recipe.Name,
		Lines:        make([]LineCost, 0, len(recipe.Ingredients)),
		Overheads:    recipe.Overheads,
		SellingPrice: recipe.SellingPrice,
	}

	for _, line := range recipe.Ingredients {
		price, ok := lookup(line.IngredientName, catalog)
		lc := LineCost{
			IngredientName: line.IngredientName,
			QuantityKg:     line.Unit.KgEquivalent(line.Quantity),
			PricePerKg:     price,
			Resolved:       ok,
		}
		lc.Cost = lc.QuantityKg * price
		if !ok {
			b.Unresolved = append(b.Unresolved, line.IngredientName)
		}
		b.TotalIngredientCost += lc.Cost
		b.Lines = append(b.Lines, lc)
	}

	b.FinalCost = b.TotalIngredientCost + recipe.Overheads
	b.Profit = recipe.SellingPrice - b.FinalCost
	if margin, err := ProfitMarginPercent(recipe, catalog); err == nil {
		b.MarginPercent = margin
		b.HasMargin = true
	}

	return b
}
