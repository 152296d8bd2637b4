package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/books"
	"github.com/Simplici0/spicebooks/internal/input"
	"github.com/Simplici0/spicebooks/internal/ledger"
	"github.com/Simplici0/spicebooks/internal/orders"
)

type orderLineRequest struct {
	RecipeID   int64   `json:"recipe_id" validate:"required,gt=0"`
	QuantityKg float64 `json:"quantity_kg" validate:"gt=0"`
}

type orderRequest struct {
	Customer string             `json:"customer" validate:"required,max=120"`
	Phone    string             `json:"phone" validate:"omitempty,max=20"`
	Date     string             `json:"date"`
	Notes    string             `json:"notes"`
	Lines    []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req orderRequest) toOrderRequest() (books.OrderRequest, error) {
	out := books.OrderRequest{
		Customer: req.Customer,
		Phone:    req.Phone,
		Notes:    req.Notes,
		Lines:    make([]orders.LineRequest, 0, len(req.Lines)),
	}
	if strings.TrimSpace(req.Date) != "" {
		day, err := ledger.ParseDay(req.Date)
		if err != nil {
			return out, apperror.NewValidation(err.Error()).WithDetail("date", req.Date)
		}
		out.Date = day
	}
	for _, l := range req.Lines {
		out.Lines = append(out.Lines, orders.LineRequest{RecipeID: l.RecipeID, QuantityKg: l.QuantityKg})
	}
	return out, nil
}

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	res, err := s.books.Orders(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleOrdersCreate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	orderReq, err := req.toOrderRequest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.PlaceOrder(r.Context(), orderReq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, res)
}

func (s *server) handleOrderInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := input.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, apperror.NewValidation("invalid order id"))
		return
	}

	res, err := s.books.Invoice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}
