package books

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/orders"
	"github.com/Simplici0/spicebooks/internal/store"
)

// OrderRequest is an order as submitted, before pricing.
type OrderRequest struct {
	Customer string
	Phone    string
	Date     time.Time
	Notes    string
	Lines    []orders.LineRequest
}

// PlaceOrder prices the requested lines at current selling prices and records the order.
func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (Result[orders.Order], error) {
	var res Result[orders.Order]
	if strings.TrimSpace(req.Customer) == "" {
		return res, apperror.NewValidation("customer is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	recipes, err := load(ctx, s, "recipes", &s.recipes, s.store.ListRecipes, &res)
	if err != nil {
		return res, err
	}
	lines, err := orders.PriceLines(req.Lines, recipes)
	if err != nil {
		return res, orderError(err)
	}
	existing, err := load(ctx, s, "orders", &s.orders, s.store.ListOrders, &res)
	if err != nil {
		return res, err
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	o := orders.Normalize(orders.Order{
		ID:       orders.NextID(existing),
		Customer: req.Customer,
		Phone:    req.Phone,
		Date:     date,
		Lines:    lines,
		Notes:    req.Notes,
	})

	next := make([]orders.Order, len(existing), len(existing)+1)
	copy(next, existing)
	s.orders.Set(append(next, o), s.now())

	addOnce := func(list []orders.Order) []orders.Order {
		if _, ok := orders.Find(list, o.ID); ok {
			return list
		}
		next := make([]orders.Order, len(list), len(list)+1)
		copy(next, list)
		return append(next, o)
	}
	persistHeld(ctx, s, &s.orders, fmt.Sprintf("order:%d", o.ID), "order "+o.Customer, &res, addOnce, func(ctx context.Context) error {
		return s.store.InsertOrder(ctx, o)
	})

	res.Value = o
	return res, nil
}

// Orders lists all orders.
func (s *Service) Orders(ctx context.Context) (Result[[]orders.Order], error) {
	var res Result[[]orders.Order]
	list, err := load(ctx, s, "orders", &s.orders, s.store.ListOrders, &res)
	if err != nil {
		return res, err
	}
	res.Value = list
	return res, nil
}

// Invoice returns the invoice of an order, issuing it on first request.
func (s *Service) Invoice(ctx context.Context, orderID int64) (Result[orders.Invoice], error) {
	var res Result[orders.Invoice]
	list, err := load(ctx, s, "orders", &s.orders, s.store.ListOrders, &res)
	if err != nil {
		return res, err
	}
	o, ok := orders.Find(list, orderID)
	if !ok {
		return res, apperror.NewNotFound("order", orderID)
	}

	s.invoicesMu.Lock()
	defer s.invoicesMu.Unlock()

	if inv, ok := s.invoices[orderID]; ok {
		res.Value = inv
		return res, nil
	}

	inv, err := s.store.InvoiceByOrder(ctx, orderID)
	switch {
	case err == nil:
		s.invoices[orderID] = inv
		res.Value = inv
		return res, nil
	case !errors.Is(err, store.ErrNotFound):
		s.log.Warn("invoice lookup failed", zap.Int64("order_id", orderID), zap.Error(err))
		res.warn("existing invoice could not be checked: " + err.Error())
	}

	inv = orders.BuildInvoice(o, s.tax, s.now())
	s.invoices[orderID] = inv
	persist(ctx, s, "invoice "+inv.Number, &res, func(ctx context.Context) error {
		return s.store.SaveInvoice(ctx, inv)
	})

	res.Value = inv
	return res, nil
}

func orderError(err error) error {
	switch {
	case errors.Is(err, orders.ErrUnknownProduct):
		return apperror.NewBusinessRule(err.Error())
	case errors.Is(err, orders.ErrInvalidQuantity), errors.Is(err, orders.ErrEmptyOrder):
		return apperror.NewValidation(err.Error())
	default:
		return apperror.NewInternal(err)
	}
}
