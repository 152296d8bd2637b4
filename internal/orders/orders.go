// Package orders prices customer orders against the recipe list and issues invoices.
package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/spicebooks/internal/costing"
)

var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrEmptyOrder      = errors.New("order has no lines")
)

// Line is one priced product on an order. Quantities are in kilograms.
type Line struct {
	RecipeID   int64   `json:"recipe_id"`
	Product    string  `json:"product"`
	QuantityKg float64 `json:"quantity_kg"`
	UnitPrice  float64 `json:"unit_price"`
}

// Order is a customer order as taken at the counter or over the phone.
type Order struct {
	ID       int64     `json:"id"`
	Customer string    `json:"customer"`
	Phone    string    `json:"phone,omitempty"`
	Date     time.Time `json:"date"`
	Lines    []Line    `json:"lines"`
	Notes    string    `json:"notes,omitempty"`
}

// LineRequest is an unpriced order line.
type LineRequest struct {
	RecipeID   int64
	QuantityKg float64
}

// PriceLines resolves each requested line against the visible recipes and
// prices it at the recipe selling price per kilogram.
func PriceLines(reqs []LineRequest, recipes []costing.Recipe) ([]Line, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyOrder
	}

	lines := make([]Line, 0, len(reqs))
	for _, req := range reqs {
		if req.QuantityKg <= 0 {
			return nil, fmt.Errorf("recipe %d: %w", req.RecipeID, ErrInvalidQuantity)
		}
		r, ok := costing.FindRecipe(recipes, req.RecipeID)
		if !ok || r.IsHidden {
			return nil, fmt.Errorf("recipe %d: %w", req.RecipeID, ErrUnknownProduct)
		}
		lines = append(lines, Line{
			RecipeID:   r.ID,
			Product:    r.Name,
			QuantityKg: req.QuantityKg,
			UnitPrice:  r.SellingPrice,
		})
	}
	return lines, nil
}

// NextID returns the largest order id plus one.
func NextID(orders []Order) int64 {
	var highest int64
	for _, o := range orders {
		if o.ID > highest {
			highest = o.ID
		}
	}
	return highest + 1
}

// Find returns the order with id.
func Find(orders []Order, id int64) (Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Normalize trims free-text fields and truncates the date to a calendar day.
func Normalize(o Order) Order {
	o.Customer = strings.TrimSpace(o.Customer)
	o.Phone = strings.TrimSpace(o.Phone)
	o.Notes = strings.TrimSpace(o.Notes)
	y, m, d := o.Date.Date()
	o.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return o
}
