package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Simplici0/spicebooks/internal/ledger"
	"github.com/Simplici0/spicebooks/internal/orders"
)

// ListOrders returns every order with its lines, ordered by id.
func (s *Store) ListOrders(ctx context.Context) ([]orders.Order, error) {
	rows, err := query(ctx, s.db, s.builder.
		Select("id", "customer", "phone", "order_date", "notes").
		From("orders").
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	list := []orders.Order{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			o    orders.Order
			date string
		)
		if err := rows.Scan(&o.ID, &o.Customer, &o.Phone, &date, &o.Notes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.Date, err = ledger.ParseDay(date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("order %d: %w", o.ID, err)
		}
		o.Lines = []orders.Line{}
		index[o.ID] = len(list)
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	rows.Close()

	lines, err := query(ctx, s.db, s.builder.
		Select("order_id", "recipe_id", "product", "quantity_kg", "unit_price").
		From("order_lines").
		OrderBy("order_id", "position"))
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var (
			orderID int64
			l       orders.Line
		)
		if err := lines.Scan(&orderID, &l.RecipeID, &l.Product, &l.QuantityKg, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := index[orderID]; ok {
			list[i].Lines = append(list[i].Lines, l)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return list, nil
}

// InsertOrder stores o and its lines in one transaction. o.ID must already be assigned.
func (s *Store) InsertOrder(ctx context.Context, o orders.Order) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := exec(ctx, tx, s.builder.
			Insert("orders").
			Columns("id", "customer", "phone", "order_date", "notes").
			Values(o.ID, o.Customer, o.Phone, ledger.FormatDay(o.Date), o.Notes)); err != nil {
			return fmt.Errorf("insert order %d: %w", o.ID, err)
		}
		if len(o.Lines) == 0 {
			return nil
		}
		ins := s.builder.
			Insert("order_lines").
			Columns("order_id", "position", "recipe_id", "product", "quantity_kg", "unit_price")
		for i, l := range o.Lines {
			ins = ins.Values(o.ID, i, l.RecipeID, l.Product, l.QuantityKg, l.UnitPrice)
		}
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert order %d lines: %w", o.ID, err)
		}
		return nil
	})
}

// SaveInvoice stores the issued invoice. An order carries at most one invoice.
func (s *Store) SaveInvoice(ctx context.Context, inv orders.Invoice) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode invoice %s: %w", inv.Number, err)
	}
	if _, err := exec(ctx, s.db, s.builder.
		Insert("invoices").
		Columns("number", "order_id", "issued_at", "total", "payload_json").
		Values(inv.Number, inv.OrderID, inv.IssuedAt.UTC().Format(time.RFC3339), inv.Total.String(), string(payload))); err != nil {
		return fmt.Errorf("insert invoice %s: %w", inv.Number, err)
	}
	return nil
}

// InvoiceByOrder loads the invoice issued for orderID.
func (s *Store) InvoiceByOrder(ctx context.Context, orderID int64) (orders.Invoice, error) {
	stmt, args, err := s.builder.
		Select("payload_json").
		From("invoices").
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return orders.Invoice{}, fmt.Errorf("build query: %w", err)
	}

	var payload string
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Invoice{}, ErrNotFound
		}
		return orders.Invoice{}, fmt.Errorf("load invoice for order %d: %w", orderID, err)
	}

	var inv orders.Invoice
	if err := json.Unmarshal([]byte(payload), &inv); err != nil {
		return orders.Invoice{}, fmt.Errorf("decode invoice for order %d: %w", orderID, err)
	}
	return inv, nil
}
