package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/costing"
	"github.com/Simplici0/spicebooks/internal/export"
	"github.com/Simplici0/spicebooks/internal/input"
)

type recipeLineRequest struct {
	IngredientName string  `json:"ingredient_name" validate:"required"`
	Quantity       float64 `json:"quantity" validate:"gte=0"`
	Unit           string  `json:"unit" validate:"required"`
}

type nutritionRequest struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
}

type recipeRequest struct {
	Name         string              `json:"name" validate:"required,max=120"`
	Ingredients  []recipeLineRequest `json:"ingredients" validate:"dive"`
	Overheads    float64             `json:"overheads" validate:"gte=0"`
	SellingPrice float64             `json:"selling_price" validate:"gte=0"`
	Preparation  string              `json:"preparation"`
	Nutrition    nutritionRequest    `json:"nutrition"`
	ShelfLife    string              `json:"shelf_life"`
	Storage      string              `json:"storage"`
}

func (req recipeRequest) toRecipe(id int64) costing.Recipe {
	lines := make([]costing.IngredientLine, 0, len(req.Ingredients))
	for _, l := range req.Ingredients {
		lines = append(lines, costing.IngredientLine{
			IngredientName: l.IngredientName,
			Quantity:       l.Quantity,
			Unit:           costing.Unit(l.Unit),
		})
	}
	return costing.Recipe{
		ID:           id,
		Name:         req.Name,
		Ingredients:  lines,
		Overheads:    req.Overheads,
		SellingPrice: req.SellingPrice,
		Preparation:  req.Preparation,
		Nutrition:    costing.Nutrition(req.Nutrition),
		ShelfLife:    req.ShelfLife,
		Storage:      req.Storage,
	}
}

func recipeID(r *http.Request) (int64, error) {
	id, err := input.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, apperror.NewValidation("invalid recipe id")
	}
	return id, nil
}

func (s *server) handleRecipesList(w http.ResponseWriter, r *http.Request) {
	includeHidden, _ := strconv.ParseBool(r.URL.Query().Get("include_hidden"))
	res, err := s.books.Recipes(r.Context(), includeHidden)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleRecipesCreate(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.CreateRecipe(r.Context(), req.toRecipe(0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, res)
}

func (s *server) handleRecipeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.Recipe(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleRecipeUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req recipeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.UpdateRecipe(r.Context(), req.toRecipe(id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleRecipeVisibilityToggle(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.ToggleRecipeVisibility(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleRecipeCost(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.CostRecipe(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handlePriceList(w http.ResponseWriter, r *http.Request) {
	res, err := s.books.PriceList(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handlePriceListCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.books.PriceList(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setDownloadHeaders(w, "price-list.csv", res.Stale)
	if err := export.WritePriceListCSV(w, res.Value); err != nil {
		s.log.Error("write price list csv failed", zap.Error(err))
	}
}
