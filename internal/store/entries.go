package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Simplici0/spicebooks/internal/ledger"
)

// ListEntries loads a register in insertion order.
func (s *Store) ListEntries(ctx context.Context, register ledger.Register) (ledger.Ledger, error) {
	rows, err := query(ctx, s.db, s.builder.
		Select("id", "item_name", "entry_date", "opening", "inbound", "outbound", "wastage", "closing").
		From("stock_entries").
		Where(squirrel.Eq{"register": string(register)}).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", register, err)
	}
	defer rows.Close()

	l := ledger.Ledger{}
	for rows.Next() {
		var (
			e    ledger.Entry
			date string
		)
		if err := rows.Scan(&e.ID, &e.ItemName, &date, &e.Opening, &e.Inbound, &e.Outbound, &e.Wastage, &e.Closing); err != nil {
			return nil, fmt.Errorf("scan %s entry: %w", register, err)
		}
		if e.Date, err = ledger.ParseDay(date); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		e.Register = register
		l = append(l, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s entries: %w", register, err)
	}
	return l, nil
}

// InsertEntry stores e under its precomputed id and closing balance.
func (s *Store) InsertEntry(ctx context.Context, e ledger.Entry) error {
	if _, err := exec(ctx, s.db, s.builder.
		Insert("stock_entries").
		Columns("register", "id", "item_name", "entry_date", "opening", "inbound", "outbound", "wastage", "closing").
		Values(string(e.Register), e.ID, e.ItemName, ledger.FormatDay(e.Date), e.Opening, e.Inbound, e.Outbound, e.Wastage, e.Closing)); err != nil {
		return fmt.Errorf("insert %s entry %d: %w", e.Register, e.ID, err)
	}
	return nil
}

// UpdateEntry overwrites the mutable columns of an entry.
func (s *Store) UpdateEntry(ctx context.Context, e ledger.Entry) error {
	res, err := exec(ctx, s.db, s.builder.
		Update("stock_entries").
		SetMap(map[string]any{
			"entry_date": ledger.FormatDay(e.Date),
			"opening":    e.Opening,
			"inbound":    e.Inbound,
			"outbound":   e.Outbound,
			"wastage":    e.Wastage,
			"closing":    e.Closing,
		}).
		Where(squirrel.Eq{"register": string(e.Register), "id": e.ID}))
	if err != nil {
		return fmt.Errorf("update %s entry %d: %w", e.Register, e.ID, err)
	}
	return mustAffect(res)
}

// DeleteEntry removes a single entry. Other entries are left untouched.
func (s *Store) DeleteEntry(ctx context.Context, register ledger.Register, id int64) error {
	res, err := exec(ctx, s.db, s.builder.
		Delete("stock_entries").
		Where(squirrel.Eq{"register": string(register), "id": id}))
	if err != nil {
		return fmt.Errorf("delete %s entry %d: %w", register, id, err)
	}
	return mustAffect(res)
}
