package main

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/spicebooks/internal/apperror"
)

type ingredientRequest struct {
	Name       string   `json:"name" validate:"required,max=120"`
	PricePerKg *float64 `json:"price_per_kg" validate:"required,gte=0"`
}

type ingredientPriceRequest struct {
	PricePerKg *float64 `json:"price_per_kg" validate:"required,gte=0"`
}

func (s *server) handleIngredientsList(w http.ResponseWriter, r *http.Request) {
	res, err := s.books.Catalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleIngredientsCreate(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.AddIngredient(r.Context(), req.Name, *req.PricePerKg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !res.Value.Added {
		s.writeError(w, r, apperror.NewDuplicate("ingredient", "name", res.Value.Ingredient.Name))
		return
	}
	writeResult(w, http.StatusCreated, res)
}

func (s *server) handleIngredientPriceUpdate(w http.ResponseWriter, r *http.Request) {
	var req ingredientPriceRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	name, err := ingredientName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.UpdateIngredientPrice(r.Context(), name, *req.PricePerKg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

// ingredientName reads the {name} segment. chi matches on the escaped path
// whenever the request carries one, so the segment is unescaped here.
func ingredientName(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return raw, nil
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperror.NewValidation("invalid ingredient name").WithDetail("name", raw)
	}
	return name, nil
}
